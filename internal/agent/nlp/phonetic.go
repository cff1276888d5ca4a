package nlp

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// NearDuplicateThreshold is the similarity from which two keywords count as the same word.
const NearDuplicateThreshold = 0.8

// Phonetic reduces s to a coarse sound code: accents are folded, non-letters
// dropped, repeated letters collapsed, vowels become A and consonants map to
// a small class alphabet.
func Phonetic(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range Fold(s) {
		c := unicode.ToLower(r)
		if c < 'a' || c > 'z' || c == prev {
			continue
		}
		prev = c
		switch c {
		case 'a', 'e', 'i', 'o', 'u':
			b.WriteByte('A')
		case 'c', 'g', 'k', 'q':
			b.WriteByte('K')
		case 'd', 't':
			b.WriteByte('T')
		case 'v', 'f':
			b.WriteByte('F')
		case 's', 'z':
			b.WriteByte('S')
		case 'x':
			b.WriteString("KS")
		default:
			b.WriteRune(unicode.ToUpper(c))
		}
	}
	return b.String()
}

// EditSimilarity is 1 - levenshtein/maxlen over runes.
func EditSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(max(la, lb))
}

// Similarity blends edit similarity of the words with edit similarity of
// their phonetic codes, in 0..1.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	lexical := EditSimilarity(a, b)
	phonetic := EditSimilarity(Phonetic(a), Phonetic(b))
	return min(max(0.7*lexical+0.3*phonetic, 0), 1)
}

type PhoneticCode struct {
	Word string `json:"word"`
	Code string `json:"code"`
}

type SimilarPair struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Similarity float64 `json:"similarity"`
}

type PhoneticAnalysis struct {
	Codes []PhoneticCode `json:"codes"`
	// SimilarityHint compares the first two keywords; zero with fewer than two.
	SimilarityHint float64       `json:"similarity_hint"`
	NearDuplicates []SimilarPair `json:"near_duplicates,omitempty"`
}

func AnalyzePhonetics(keywords []string) PhoneticAnalysis {
	var out PhoneticAnalysis
	for _, k := range keywords {
		out.Codes = append(out.Codes, PhoneticCode{Word: k, Code: Phonetic(k)})
	}
	if len(keywords) > 1 {
		out.SimilarityHint = Similarity(keywords[0], keywords[1])
	}
	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			if s := Similarity(keywords[i], keywords[j]); s >= NearDuplicateThreshold {
				out.NearDuplicates = append(out.NearDuplicates, SimilarPair{A: keywords[i], B: keywords[j], Similarity: s})
			}
		}
	}
	return out
}
