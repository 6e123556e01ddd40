package domain

import "testing"

func TestParseVerdict(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Verdict
		ok    bool
	}{
		{name: "lowercase", input: "satire", want: VerdictSatire, ok: true},
		{name: "uppercase", input: "FACTUAL", want: VerdictFactual, ok: true},
		{name: "mixed case", input: "Dark_Humor", want: VerdictDarkHumor, ok: true},
		{name: "with whitespace", input: "  misleading  ", want: VerdictMisleading, ok: true},
		{name: "unknown category", input: "spicy", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "pending is not a verdict", input: "pending", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseVerdict(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseVerdict(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("ParseVerdict(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestAllVerdictsAreValid(t *testing.T) {
	if len(AllVerdicts) != 12 {
		t.Fatalf("expected 12 verdict categories, got %d", len(AllVerdicts))
	}
	for _, v := range AllVerdicts {
		if !v.IsValid() {
			t.Errorf("verdict %q reported invalid", v)
		}
	}
}

func TestFormatConfidence(t *testing.T) {
	testCases := []struct {
		name  string
		input float64
		want  int
	}{
		{name: "decimal fraction scales up", input: 0.85, want: 85},
		{name: "exactly one scales up", input: 1.0, want: 100},
		{name: "rounds scaled value", input: 0.856, want: 86},
		{name: "percentage passes through", input: 85, want: 85},
		{name: "percentage rounds", input: 72.6, want: 73},
		{name: "zero stays zero", input: 0, want: 0},
		{name: "just above one is a percentage", input: 1.4, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatConfidence(tc.input); got != tc.want {
				t.Errorf("FormatConfidence(%v) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}
