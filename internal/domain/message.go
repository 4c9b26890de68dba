package domain

import (
	"errors"
	"strings"
)

// MaxMessageLen caps chat message bodies, counted in runes so multi-byte
// scripts get the same limit as ASCII.
const MaxMessageLen = 2000

var (
	ErrMessageEmpty   = errors.New("message empty")
	ErrMessageTooLong = errors.New("message too long")
)

// NormalizeMessage trims and validates a chat message body.
func NormalizeMessage(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrMessageEmpty
	}
	if len([]rune(text)) > MaxMessageLen {
		return "", ErrMessageTooLong
	}
	return text, nil
}
