package safety

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Length ratio bounds outside which a translation is suspiciously
// short or long. Advisory only.
const (
	minLengthRatio = 0.2
	maxLengthRatio = 5.0
)

// SafetyCheckResult is the verdict of the safety checks. When IsSafe is
// false, ErrorCode carries one of the Code constants and the translation
// must be withheld. Warnings may be present on both verdicts.
type SafetyCheckResult struct {
	IsSafe       bool     `json:"is_safe"`
	ErrorCode    string   `json:"error_code,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Verify runs the safety checks in fixed order and stops at the first
// failure: numeric integrity, negation preservation, emptiness and
// length ratio, then placeholder residue when a mapping is supplied.
// Warnings from the checks that ran are carried on the returned result
// either way.
func (c *Checker) Verify(source, translated, sourceLang string, mapping PlaceholderMapping) SafetyCheckResult {
	var warnings []string

	numeric := c.checkNumericIntegrity(source, translated)
	warnings = append(warnings, numeric.Warnings...)
	if !numeric.IsSafe {
		numeric.Warnings = warnings
		return numeric
	}

	negation := c.checkNegationPreservation(source, translated, sourceLang)
	warnings = append(warnings, negation.Warnings...)
	if !negation.IsSafe {
		negation.Warnings = warnings
		return negation
	}

	length := c.checkLengthAnomaly(source, translated)
	if !length.IsSafe {
		length.Warnings = warnings
		return length
	}
	warnings = append(warnings, length.Warnings...)

	if mapping != nil {
		residue := c.checkPlaceholderResidue(translated)
		if !residue.IsSafe {
			residue.Warnings = warnings
			return residue
		}
	}

	return SafetyCheckResult{IsSafe: true, Warnings: warnings}
}

// checkNumericIntegrity requires the multiset of numbers on both sides
// to match exactly. Comma decimals compare equal to dot decimals;
// reordering is allowed, any loss, gain or alteration is not.
func (c *Checker) checkNumericIntegrity(source, translated string) SafetyCheckResult {
	sourceNumbers := canonicalNumbers(source)
	translatedNumbers := canonicalNumbers(translated)

	if !equalStrings(sourceNumbers, translatedNumbers) {
		return SafetyCheckResult{
			IsSafe:    false,
			ErrorCode: CodeNumericIntegrity,
			ErrorMessage: fmt.Sprintf("Écart numérique détecté: source=[%s] traduction=[%s]",
				strings.Join(sourceNumbers, ", "), strings.Join(translatedNumbers, ", ")),
		}
	}
	return SafetyCheckResult{IsSafe: true}
}

// checkNegationPreservation fails when the source carries negation
// markers and the translation carries none from the target vocabulary.
// A lost negation turns "do not take" into "take".
func (c *Checker) checkNegationPreservation(source, translated, sourceLang string) SafetyCheckResult {
	sourceVocab, targetVocab := negationVocab(sourceLang)

	sourceLower := strings.ToLower(source)
	var found []string
	for _, negation := range sourceVocab {
		if strings.Contains(sourceLower, negation) {
			found = append(found, negation)
		}
	}
	if len(found) == 0 {
		return SafetyCheckResult{IsSafe: true}
	}

	translatedLower := strings.ToLower(translated)
	for _, negation := range targetVocab {
		if strings.Contains(translatedLower, negation) {
			return SafetyCheckResult{IsSafe: true}
		}
	}

	return SafetyCheckResult{
		IsSafe:       false,
		ErrorCode:    CodeNegationLoss,
		ErrorMessage: "Négation perdue dans la traduction: " + strings.Join(found, ", "),
	}
}

// checkLengthAnomaly fails only when either side is empty after
// trimming. A length ratio outside the accepted band produces a
// warning, not a failure.
func (c *Checker) checkLengthAnomaly(source, translated string) SafetyCheckResult {
	src := strings.TrimSpace(source)
	dst := strings.TrimSpace(translated)

	if src == "" || dst == "" {
		return SafetyCheckResult{
			IsSafe:       false,
			ErrorCode:    CodeEmptyTranslation,
			ErrorMessage: "Texte source ou traduction vide",
		}
	}

	ratio := float64(utf8.RuneCountInString(dst)) / float64(utf8.RuneCountInString(src))
	if ratio < minLengthRatio || ratio > maxLengthRatio {
		return SafetyCheckResult{
			IsSafe:   true,
			Warnings: []string{fmt.Sprintf("Longueur de traduction anormale (ratio %.2f)", ratio)},
		}
	}
	return SafetyCheckResult{IsSafe: true}
}

// checkPlaceholderResidue fails when placeholder-shaped tokens survive
// in the final translation, meaning the translator emitted or mangled
// a placeholder that Unmask could not restore.
func (c *Checker) checkPlaceholderResidue(translated string) SafetyCheckResult {
	leftovers := placeholderPattern.FindAllString(translated, -1)
	if len(leftovers) > 0 {
		return SafetyCheckResult{
			IsSafe:       false,
			ErrorCode:    CodePlaceholderResidue,
			ErrorMessage: "Placeholders non restitués: " + strings.Join(leftovers, ", "),
		}
	}
	return SafetyCheckResult{IsSafe: true}
}

// canonicalNumbers extracts every number from text, normalizes comma
// decimals to dots and sorts the result for multiset comparison.
func canonicalNumbers(text string) []string {
	numbers := numberPattern.FindAllString(text, -1)
	out := make([]string, len(numbers))
	for i, n := range numbers {
		out[i] = strings.ReplaceAll(n, ",", ".")
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
