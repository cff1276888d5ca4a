package lockhealth

import (
	"fmt"
	"strings"
)

// Strategy selects what happens when a guarded resource is found poisoned.
type Strategy int32

const (
	// FailFast aborts the current call with a retryable error. The resource stays poisoned.
	FailFast Strategy = iota
	// RecoverAndContinue clears the poison marker and proceeds with the value as left by the failed writer.
	RecoverAndContinue
	// RecoverWithDefault clears the poison marker and resets the value to its default.
	RecoverWithDefault
)

func (s Strategy) String() string {
	switch s {
	case FailFast:
		return "fail_fast"
	case RecoverAndContinue:
		return "recover_and_continue"
	case RecoverWithDefault:
		return "recover_with_default"
	default:
		return fmt.Sprintf("strategy(%d)", int32(s))
	}
}

// ParseStrategy accepts the snake_case names produced by String, case-insensitively.
func ParseStrategy(v string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "fail_fast", "failfast":
		return FailFast, nil
	case "recover_and_continue", "recover", "":
		return RecoverAndContinue, nil
	case "recover_with_default", "reset":
		return RecoverWithDefault, nil
	default:
		return FailFast, fmt.Errorf("unknown lock recovery strategy %q", v)
	}
}
