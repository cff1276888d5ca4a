package nlp

import (
	"slices"
	"sort"
	"strings"
)

const (
	DefaultKeywordLimit = 8
	DefaultTopicLimit   = 4
)

var stopWords = []string{
	"the", "a", "an", "and", "or", "to", "of", "in", "on", "for", "with", "is", "it", "this",
	"that", "i", "you", "we", "they", "be", "are", "was", "were", "as", "at", "from", "by",
	"about", "into", "over", "after", "before",
}

func IsStopWord(w string) bool {
	return slices.Contains(stopWords, strings.ToLower(w))
}

type TopicsKeywords struct {
	Topics   []string `json:"topics"`
	Keywords []string `json:"keywords"`
}

// Keywords returns up to limit non-stop-word tokens by descending frequency,
// ties broken by first occurrence.
func Keywords(text string, limit int) []string {
	type item struct {
		word  string
		count int
		first int
	}
	index := make(map[string]*item)
	var items []*item
	for i, tok := range Tokenize(text) {
		if slices.Contains(stopWords, tok) {
			continue
		}
		if it, ok := index[tok]; ok {
			it.count++
			continue
		}
		it := &item{word: tok, count: 1, first: i}
		index[tok] = it
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].count > items[j].count
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.word)
	}
	return out
}

// Topics groups keywords sharing a stem sound and returns the first keyword of
// each group, up to limit. It is never empty when keywords is not.
func Topics(keywords []string, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range keywords {
		key := topicKey(k)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func ExtractTopicsKeywords(text string, keywordLimit, topicLimit int) TopicsKeywords {
	kw := Keywords(text, keywordLimit)
	return TopicsKeywords{Topics: Topics(kw, topicLimit), Keywords: kw}
}

var suffixes = []string{"ing", "ed", "es", "ly", "s"}

// Stem drops one common English suffix when enough of the word remains.
func Stem(w string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) && len(w)-len(s) >= 3 {
			return strings.TrimSuffix(w, s)
		}
	}
	return w
}

func topicKey(w string) string {
	key := strings.TrimRight(Phonetic(Stem(w)), "A")
	if key == "" {
		return w
	}
	return key
}
