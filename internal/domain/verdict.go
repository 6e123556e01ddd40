package domain

import "strings"

// Verdict is the truthfulness/tone category assigned to a meme or to an
// individual claim. The set is closed; anything outside it fails validation.
type Verdict string

const (
	// Truthfulness & accuracy categories
	VerdictFactual        Verdict = "FACTUAL"
	VerdictMisleading     Verdict = "MISLEADING"
	VerdictOutOfContext   Verdict = "OUT_OF_CONTEXT"
	VerdictDistorted      Verdict = "DISTORTED"
	VerdictMisinformation Verdict = "MISINFORMATION"
	VerdictLies           Verdict = "LIES"
	VerdictUnverifiable   Verdict = "UNVERIFIABLE"

	// Tone-based categories
	VerdictSarcasm   Verdict = "SARCASM"
	VerdictSatire    Verdict = "SATIRE"
	VerdictHumor     Verdict = "HUMOR"
	VerdictWholesome Verdict = "WHOLESOME"
	VerdictDarkHumor Verdict = "DARK_HUMOR"

	// VerdictPending marks imported records that have not been analyzed yet.
	// It is never produced by the analysis stage.
	VerdictPending Verdict = "PENDING"
)

// AllVerdicts lists the categories the analysis stage may produce.
var AllVerdicts = []Verdict{
	VerdictFactual,
	VerdictMisleading,
	VerdictOutOfContext,
	VerdictDistorted,
	VerdictMisinformation,
	VerdictLies,
	VerdictUnverifiable,
	VerdictSarcasm,
	VerdictSatire,
	VerdictHumor,
	VerdictWholesome,
	VerdictDarkHumor,
}

// ParseVerdict normalizes a raw verdict string to its canonical upper-case
// form. Gallery filters are exact-match, so verdicts are always stored
// normalized.
// Parameters:
//   - s: raw verdict string in any case.
//
// Returns:
//   - Verdict: canonical verdict.
//   - bool: false if s is not a member of the closed set.
func ParseVerdict(s string) (Verdict, bool) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllVerdicts {
		if v == known {
			return v, true
		}
	}
	return "", false
}

// IsValid reports whether v is a member of the closed analysis verdict set.
func (v Verdict) IsValid() bool {
	_, ok := ParseVerdict(string(v))
	return ok
}
