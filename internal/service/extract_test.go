package service

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "fenced json block",
			input: "Here is the result:\n```json\n{\"is_meme\": true}\n```\nDone.",
			want:  `{"is_meme": true}`,
		},
		{
			name:  "fenced block without language tag",
			input: "```\n{\"confidence\": 85}\n```",
			want:  `{"confidence": 85}`,
		},
		{
			name:  "bare object",
			input: `{"verdict": "satire"}`,
			want:  `{"verdict": "satire"}`,
		},
		{
			name:  "object wrapped in chat text",
			input: "Sure! The analysis is {\"verdict\": \"humor\"} as requested.",
			want:  `{"verdict": "humor"}`,
		},
		{
			name:    "no json at all",
			input:   "I cannot analyze this image.",
			wantErr: true,
		},
		{
			name:    "invalid json in fenced block",
			input:   "```json\n{not valid}\n```",
			wantErr: true,
		},
		{
			name:    "unbalanced braces",
			input:   "result: { \"a\": 1",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
			if !json.Valid(got) {
				t.Errorf("extracted JSON is not valid: %s", got)
			}
		})
	}
}

func TestExtractJSONNestedObjects(t *testing.T) {
	input := `{"claims": [{"text": "x", "sources": [{"url": "https://a"}]}]}`
	got, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != input {
		t.Errorf("nested object truncated: got %s", got)
	}
}
