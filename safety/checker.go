package safety

// MedicationMatcher is the slice of the lexicon the checker needs: a
// whole-word scan returning matches in order of appearance.
type MedicationMatcher interface {
	FindAll(text string) []string
}

// Checker is the translation safety engine. It holds no mutable state
// beyond the medication matcher, so a single instance serves all
// requests concurrently.
type Checker struct {
	medications MedicationMatcher
}

// NewChecker creates a Checker using the given medication matcher.
// A nil matcher disables medication detection but leaves the pattern
// based checks fully functional.
func NewChecker(medications MedicationMatcher) *Checker {
	return &Checker{medications: medications}
}
