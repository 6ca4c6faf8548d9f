package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals a model response into v. Responses that wrap the
// object in prose or code fences are retried on the first balanced object.
func decodeJSON(response string, v any) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal([]byte(response), v); err == nil {
		return nil
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return fmt.Errorf("no JSON object found in response: %w", ErrInvalidResponse)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// extractJSON finds and extracts a JSON object from text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	// Find matching closing brace, ignoring braces inside strings
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
