// Package redact masks credentials before they reach logs or terminal output.
package redact

import (
	"strings"
	"unicode"
)

// secretWords are name segments that mark a credential on their own.
var secretWords = map[string]bool{
	"token":         true,
	"secret":        true,
	"password":      true,
	"passwd":        true,
	"auth":          true,
	"authorization": true,
	"credential":    true,
	"credentials":   true,
	"bearer":        true,
	"apikey":        true,
	"cookie":        true,
}

// keyQualifiers are segments that turn a following "key" segment into a
// credential. A bare "key" names a server entry and is left readable.
var keyQualifiers = map[string]bool{
	"api":        true,
	"access":     true,
	"private":    true,
	"secret":     true,
	"signing":    true,
	"client":     true,
	"encryption": true,
}

// TokenPrefixes contains known token prefixes that indicate sensitive values
// regardless of key name.
var TokenPrefixes = []string{
	"Bearer ",
	"ghp_",
	"gho_",
	"sk-",
	"xoxb-",
	"xoxp-",
}

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// ShouldMask reports whether a field named key holds a credential.
// Names are split into lower-case segments on punctuation and camelCase, so
// SMITHERY_API_KEY, apiKey and registry.api_key match while key, server_key
// and keyboard do not.
func ShouldMask(key string) bool {
	words := segments(key)
	for i, w := range words {
		if secretWords[w] {
			return true
		}
		if w == "key" && i > 0 && keyQualifiers[words[i-1]] {
			return true
		}
	}
	return false
}

func segments(name string) []string {
	var (
		words []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
		}
		cur.WriteRune(r)
	}
	flush()
	return words
}

// ContainsTokenPrefix returns true if the value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// Value returns value masked when either the key or the value itself looks
// sensitive, and unchanged otherwise.
func Value(key, value string) string {
	if ShouldMask(key) || ContainsTokenPrefix(value) {
		return MaskValue(value)
	}
	return value
}
