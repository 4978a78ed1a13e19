package fluency

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DetailLevel controls how much of a response is kept
type DetailLevel string

const (
	DetailBrief         DetailLevel = "BRIEF"
	DetailMedium        DetailLevel = "MEDIUM"
	DetailDetailed      DetailLevel = "DETAILED"
	DetailComprehensive DetailLevel = "COMPREHENSIVE"
)

// FollowUp is appended to detailed responses
const FollowUp = "هل تريد معرفة المزيد؟"

// ParseDetailLevel validates a detail level name
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch level := DetailLevel(strings.ToUpper(strings.TrimSpace(s))); level {
	case DetailBrief, DetailMedium, DetailDetailed, DetailComprehensive:
		return level, nil
	}
	return "", fmt.Errorf("unknown detail level %q", s)
}

// ApplyDetail trims text to its first sentence for brief output and
// invites a follow-up for detailed output
func ApplyDetail(text string, level DetailLevel) string {
	switch level {
	case DetailBrief:
		return FirstSentence(text)
	case DetailDetailed, DetailComprehensive:
		text = strings.TrimSpace(text)
		if text == "" || strings.HasSuffix(text, FollowUp) {
			return text
		}
		return text + " " + FollowUp
	}
	return text
}

// FirstSentence returns text up to and including its first terminal mark
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		switch r {
		case '.', '!', '?', '؟':
			return text[:i+utf8.RuneLen(r)]
		}
	}
	return text
}
