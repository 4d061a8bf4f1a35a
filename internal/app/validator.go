package app

import "strings"

// AnswerValidator judges a submitted answer against the canonical one.
// Leading/trailing whitespace is ignored and comparison is
// case-insensitive; there is no fuzzy or partial matching.
type AnswerValidator struct{}

func (AnswerValidator) Judge(userAnswer, canonicalAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(canonicalAnswer))
}
