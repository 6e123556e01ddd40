package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON pulls a JSON object out of raw model output. Models asked for
// "only JSON" still wrap it in markdown fences or chat text often enough that
// structured output cannot be assumed.
//
// Search order: fenced code block first, then the outermost {...} span.
// Parameters:
//   - text: raw response text.
//
// Returns:
//   - json.RawMessage: the extracted JSON bytes.
//   - error: non-nil when no parseable JSON object is present.
func ExtractJSON(text string) (json.RawMessage, error) {
	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
		return nil, fmt.Errorf("invalid JSON in code block: %q", truncate(candidate, 120))
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
		return nil, fmt.Errorf("invalid JSON object in response: %q", truncate(candidate, 120))
	}

	return nil, fmt.Errorf("no JSON found in response")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
