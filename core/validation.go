package core

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// emojiPattern matches a single emoji rune. Symbol ranges only; letter
// scripts must pass through untouched.
var emojiPattern = regexp.MustCompile(`[\x{2600}-\x{27BF}\x{1F1E6}-\x{1F1FF}\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}]`)

// dangerousFragments are markup fragments rejected outright.
var dangerousFragments = []string{"<script", "javascript:", "onclick", "onerror"}

// injectionPhrases are common prompt-injection markers.
var injectionPhrases = []string{
	"ignore previous",
	"ignore above",
	"disregard",
	"forget your instructions",
	"new instructions",
	"system prompt",
}

// ValidateQuestion checks a user question against length, emoji, and markup
// limits. Returns nil if the question is acceptable.
func ValidateQuestion(question string, maxLength, maxEmoji int) error {
	if strings.TrimSpace(question) == "" {
		return ErrQuestionEmpty
	}
	if utf8.RuneCountInString(question) > maxLength {
		return ErrQuestionTooLong
	}
	if len(emojiPattern.FindAllString(question, -1)) > maxEmoji {
		return ErrTooManyEmoji
	}
	lower := strings.ToLower(question)
	for _, fragment := range dangerousFragments {
		if strings.Contains(lower, fragment) {
			return ErrUnsafeInput
		}
	}
	return nil
}

// IsInjectionAttempt reports whether the text looks like a prompt-injection
// attempt. Heuristic only; used for telemetry, not admission control.
func IsInjectionAttempt(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range injectionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
