package coach

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"
)

// maxCleanPasses bounds the fixed-point loops in Clean.
const maxCleanPasses = 8

// Sanitizer cleans and bounds struggle text before it reaches a prompt.
type Sanitizer struct {
	policy    *bluemonday.Policy
	validate  *validator.Validate
	maxLength int
}

// NewSanitizer creates a Sanitizer accepting at most maxLength runes.
func NewSanitizer(maxLength int) *Sanitizer {
	return &Sanitizer{
		policy:    bluemonday.StrictPolicy(),
		validate:  validator.New(),
		maxLength: maxLength,
	}
}

// MaxLength returns the accepted rune count.
func (s *Sanitizer) MaxLength() int {
	return s.maxLength
}

// Clean decodes entities, strips HTML elements, drops control characters and
// collapses whitespace. Angle brackets that do not open a known HTML element
// are kept as text. Clean(Clean(x)) == Clean(x).
func (s *Sanitizer) Clean(raw string) string {
	text := raw
	for i := 0; i < maxCleanPasses; i++ {
		next := s.cleanOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func (s *Sanitizer) cleanOnce(raw string) string {
	text := unescapeAll(raw)
	text = escapeStrayBrackets(text)
	// bluemonday escapes the text it keeps; the prompt wants plain text.
	text = html.UnescapeString(s.policy.Sanitize(text))
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// Check cleans raw and validates the result. On failure it returns the
// user-facing message alongside the validator error.
func (s *Sanitizer) Check(raw string) (string, string, error) {
	text := s.Clean(raw)

	err := s.validate.Var(text, fmt.Sprintf("required,max=%d", s.maxLength))
	if err == nil {
		return text, "", nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return "", fmt.Sprintf("'%s' must be at most %d characters.", FormField, s.maxLength), err
	}
	return "", MissingFieldMessage, err
}

// unescapeAll decodes entities until nothing changes, so double-encoded
// markup is seen by the sanitizer as markup.
func unescapeAll(s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// escapeStrayBrackets entity-encodes every '<' that does not start a
// complete tag for a known HTML element, so "2<3" or "<leave>" survive the
// HTML sanitizer as text.
func escapeStrayBrackets(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !opensKnownTag(s[i+1:]) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// opensKnownTag reports whether rest (the text after a '<') is the body of a
// tag for a known element, terminated by '>' before any further '<'.
func opensKnownTag(rest string) bool {
	rest = strings.TrimPrefix(rest, "/")
	n := 0
	for n < len(rest) && isASCIIAlnum(rest[n]) {
		n++
	}
	if n == 0 || !isASCIILetter(rest[0]) {
		return false
	}
	if atom.Lookup([]byte(strings.ToLower(rest[:n]))) == 0 {
		return false
	}
	end := strings.IndexByte(rest[n:], '>')
	if end < 0 {
		return false
	}
	return !strings.Contains(rest[n:n+end], "<")
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isASCIIAlnum(c byte) bool {
	return isASCIILetter(c) || ('0' <= c && c <= '9')
}
