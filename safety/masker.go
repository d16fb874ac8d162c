package safety

import (
	"strconv"
	"strings"

	"github.com/yamasante/medtranslate-api/logging"
)

// PlaceholderPair binds one placeholder token to the original text it
// replaced.
type PlaceholderPair struct {
	Placeholder string `json:"placeholder"`
	Original    string `json:"original"`
}

// PlaceholderMapping records the substitutions Mask performed, in the
// order they were made. Each placeholder appears exactly once. A nil
// mapping means masking was not used.
type PlaceholderMapping []PlaceholderPair

// maxMedicationPlaceholders bounds the single-letter medication tokens
// MEDICATIONA through MEDICATIONZ.
const maxMedicationPlaceholders = 26

// Mask replaces critical elements with opaque placeholders the
// translator has no reason to touch: medications become MEDICATION
// plus a letter, dosages DOSAGE<n>, standalone numbers VALUE<n>, all
// sharing one counter. A placeholder already present in the text is
// never reused: its slot is burned, that one element stays unmasked
// and later elements keep their own slots, so Unmask restores the
// input exactly. The returned mapping is never nil; empty means
// nothing needed masking.
func (c *Checker) Mask(text string) (string, PlaceholderMapping) {
	masked := text
	mapping := PlaceholderMapping{}
	counter := 0

	if c.medications != nil {
		for _, med := range c.medications.FindAll(text) {
			if counter >= maxMedicationPlaceholders {
				logging.Warn("Medication placeholders exhausted, leaving the rest unmasked",
					"medication", med)
				break
			}
			placeholder := "MEDICATION" + string(rune('A'+counter))
			if strings.Contains(masked, placeholder) {
				counter++
				continue
			}
			repaired, ok := replaceFirstToken(masked, med, placeholder)
			if !ok {
				continue
			}
			masked = repaired
			mapping = append(mapping, PlaceholderPair{Placeholder: placeholder, Original: med})
			counter++
		}
	}

	for _, dosage := range findOrdered(masked, dosagePatterns) {
		placeholder := "DOSAGE" + strconv.Itoa(counter)
		if strings.Contains(masked, placeholder) {
			counter++
			continue
		}
		replaced, ok := replaceFirstToken(masked, dosage, placeholder)
		if !ok {
			continue
		}
		masked = replaced
		mapping = append(mapping, PlaceholderPair{Placeholder: placeholder, Original: dosage})
		counter++
	}

	for _, number := range numberPattern.FindAllString(masked, -1) {
		placeholder := "VALUE" + strconv.Itoa(counter)
		if strings.Contains(masked, placeholder) {
			counter++
			continue
		}
		replaced, ok := replaceFirstToken(masked, number, placeholder)
		if !ok {
			continue
		}
		masked = replaced
		mapping = append(mapping, PlaceholderPair{Placeholder: placeholder, Original: number})
		counter++
	}

	return masked, mapping
}

// Unmask substitutes the original text back for every placeholder in
// the mapping. Reverse insertion order, so DOSAGE10 is restored before
// DOSAGE1 ever gets to match its prefix.
func (c *Checker) Unmask(text string, mapping PlaceholderMapping) string {
	result := text
	for i := len(mapping) - 1; i >= 0; i-- {
		result = strings.ReplaceAll(result, mapping[i].Placeholder, mapping[i].Original)
	}
	return result
}
