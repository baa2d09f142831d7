// Package lenient extracts structured data from free-text model replies
// without ever failing the caller.
package lenient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is reported when a reply contains no decodable JSON value
var ErrNoJSON = errors.New("no JSON value found in reply")

// Result carries an extracted value and whether a default was substituted.
// Value is always usable; Err only explains why Fallback is set.
type Result[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

// Ok wraps a successfully extracted value
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Default wraps a substituted default and the reason for it
func Default[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Fallback: true, Err: err}
}

// StripFences removes a surrounding markdown code block, if any
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl != -1 && !strings.ContainsAny(content[:nl], "{[") {
		content = content[nl+1:]
	}
	if idx := strings.LastIndex(content, "```"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

// FirstObject returns the first balanced {...} substring of s
func FirstObject(s string) (string, bool) {
	return firstBalanced(s, '{', '}')
}

// FirstArray returns the first balanced [...] substring of s
func FirstArray(s string) (string, bool) {
	return firstBalanced(s, '[', ']')
}

// firstBalanced scans for the earliest open..close span whose brackets
// balance, ignoring brackets inside JSON string literals.
func firstBalanced(s string, open, close byte) (string, bool) {
	for start := strings.IndexByte(s, open); start != -1; {
		if end := matchClose(s, start, open, close); end != -1 {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], open)
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchClose(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// DecodeObject decodes the first JSON object in reply over a copy of def.
// Fields the reply omits keep their default. When any of required is absent
// the merged value is returned with Fallback set.
func DecodeObject[T any](reply string, def T, required ...string) Result[T] {
	raw, err := locate(reply, FirstObject)
	if err != nil {
		return Default(def, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return Default(def, fmt.Errorf("decode object: %w", err))
	}

	out := def
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Default(def, fmt.Errorf("decode object: %w", err))
	}

	var missing []string
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Result[T]{Value: out, Fallback: true, Err: fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))}
	}
	return Ok(out)
}

// DecodeArray decodes the first JSON array in reply
func DecodeArray[T any](reply string) ([]T, error) {
	raw, err := locate(reply, FirstArray)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	return out, nil
}

// locate finds the candidate JSON text: the first balanced span, else the whole
// fence-stripped reply.
func locate(reply string, find func(string) (string, bool)) (string, error) {
	body := StripFences(reply)
	if raw, ok := find(body); ok {
		return raw, nil
	}
	if json.Valid([]byte(body)) {
		return body, nil
	}
	return "", ErrNoJSON
}

const bulletChars = "-*0123456789. "

// BulletLines keeps reply lines that start with "-", "*" or "N." and strips the marker
func BulletLines(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isBullet(line) {
			continue
		}
		if item := strings.TrimLeft(line, bulletChars); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func isBullet(line string) bool {
	if line[0] == '-' || line[0] == '*' {
		return true
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && i < len(line) && line[i] == '.'
}

// QuestionLines keeps trimmed reply lines containing a question mark
func QuestionLines(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, "?") {
			out = append(out, line)
		}
	}
	return out
}

// NonEmptyLines returns trimmed, non-empty lines with list markers removed
func NonEmptyLines(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isBullet(line) {
			line = strings.TrimLeft(line, bulletChars)
		}
		line = strings.Trim(line, `"`)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Strings reads a JSON string array, falling back to bullet lines and then to def
func Strings(reply string, def []string) Result[[]string] {
	items, err := DecodeArray[string](reply)
	if err == nil && len(items) > 0 {
		return Ok(items)
	}
	if lines := BulletLines(reply); len(lines) > 0 {
		return Default(lines, err)
	}
	if err == nil {
		err = errors.New("empty array")
	}
	return Default(def, err)
}
