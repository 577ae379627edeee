package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedOutput = errors.New("malformed model output")

// DecodeRecords parses a JSON array of T out of a model answer. Code fences
// and text around the array are ignored; a lone object becomes a one-element
// slice.
func DecodeRecords[T any](answer string) ([]T, error) {
	text := stripFences(answer)

	var out []T
	if raw, ok := extract(text, '[', ']'); ok {
		if err := unmarshalRepaired(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		return out, nil
	}
	if raw, ok := extract(text, '{', '}'); ok {
		var one T
		if err := unmarshalRepaired(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		return []T{one}, nil
	}
	return nil, fmt.Errorf("%w: no JSON found", ErrMalformedOutput)
}

func unmarshalRepaired(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(repairJSON(raw)), v)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extract returns the outermost open..close span of s.
func extract(s string, open, close byte) (string, bool) {
	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

// repairJSON adds the opening quote to keys the model emitted as `, name":`.
func repairJSON(s string) string {
	in := []rune(s)
	fixed := make([]rune, 0, len(in)+16)

	i := 0
	for i < len(in) {
		ch := in[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}
		fixed = append(fixed, ch)
		i++
		for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\t') {
			fixed = append(fixed, in[i])
			i++
		}
		if i >= len(in) || in[i] == '"' || !isKeyRune(in[i]) {
			continue
		}
		start := i
		for i < len(in) && (isKeyRune(in[i]) || in[i] == '_') {
			i++
		}
		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, in[start:i]...)
	}
	return string(fixed)
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
