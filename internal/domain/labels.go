package domain

// Dimension names a classification axis. The classifier collaborator receives
// the dimension alongside the text and answers with one label from the
// dimension's fixed set.
type Dimension string

const (
	DimensionMood   Dimension = "mood"
	DimensionSafety Dimension = "safety"
)

// Mood labels.
const (
	MoodHappy   = "happy"
	MoodSad     = "sad"
	MoodNeutral = "neutral"
)

// Safety labels.
const (
	SafetySafe   = "safe"
	SafetyUnsafe = "unsafe"
)

// MoodLabels is the fixed label set for the mood dimension.
var MoodLabels = []string{MoodHappy, MoodSad, MoodNeutral}

// SafetyLabels is the fixed label set for the safety dimension.
var SafetyLabels = []string{SafetySafe, SafetyUnsafe}

// FallbackLabel returns the deterministic substitute label for a dimension
// when classification fails or times out.
func FallbackLabel(dim Dimension) string {
	switch dim {
	case DimensionSafety:
		return SafetySafe
	default:
		return MoodNeutral
	}
}

// ValidLabel reports whether label belongs to the dimension's fixed set.
func ValidLabel(dim Dimension, label string) bool {
	var set []string
	switch dim {
	case DimensionMood:
		set = MoodLabels
	case DimensionSafety:
		set = SafetyLabels
	default:
		return false
	}
	for _, l := range set {
		if l == label {
			return true
		}
	}
	return false
}
