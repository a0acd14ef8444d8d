// File: internal/severity/severity.go

// Package severity buckets predicted CVSS base scores into qualitative
// severity classes.
package severity

// Class is a qualitative severity rating.
type Class string

const (
	ClassNone     Class = "None"
	ClassLow      Class = "Low"
	ClassMedium   Class = "Medium"
	ClassHigh     Class = "High"
	ClassCritical Class = "Critical"
)

// Classify maps a CVSS base score onto its severity class. The cut points
// are the CVSS v3 qualitative rating boundaries the severity model was
// calibrated against: 0 → None, <4 → Low, <7 → Medium, <9 → High,
// otherwise Critical.
func Classify(score float64) Class {
	switch {
	case score == 0:
		return ClassNone
	case score < 4:
		return ClassLow
	case score < 7:
		return ClassMedium
	case score < 9:
		return ClassHigh
	default:
		return ClassCritical
	}
}
