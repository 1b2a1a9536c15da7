// Package sanitizer normalizes free-text input before validation and
// persistence. Strategies compose into pipelines applied left to right.
package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reCollapseSpaces = regexp.MustCompile(`\s+`)
	reControlChars   = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

func collapseWhitespace(s string) string {
	return reCollapseSpaces.ReplaceAllString(s, " ")
}

func stripControlChars(s string) string {
	return reControlChars.ReplaceAllString(s, "")
}

// SanitizeLabel normalizes short display names such as extra-service names.
func SanitizeLabel(input string) string {
	p := Pipeline{
		stripControlChars,
		collapseWhitespace,
		trimSpace,
	}
	return p.Apply(input)
}

// SanitizeFreeText normalizes longer text such as descriptions and guest
// opinions; newlines are preserved.
func SanitizeFreeText(input string) string {
	p := Pipeline{
		stripControlChars,
		trimSpace,
	}
	return p.Apply(input)
}
