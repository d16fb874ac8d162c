package safety

import (
	"regexp"
	"sort"
)

// ExtractedElements holds the critical elements found in a clinical
// text. The categories are computed independently, so a dosage like
// "500 mg" also contributes its number to AllNumbers.
type ExtractedElements struct {
	Medications   []string `json:"medications"`
	Dosages       []string `json:"dosages"`
	MedicalValues []string `json:"medical_values"`
	AllNumbers    []string `json:"all_numbers"`
}

// Extract collects medications, dosages, medical values and standalone
// numbers from text, each in first-occurrence order.
func (c *Checker) Extract(text string) ExtractedElements {
	elements := ExtractedElements{
		Medications:   []string{},
		Dosages:       findOrdered(text, dosagePatterns),
		MedicalValues: findOrdered(text, medicalValuePatterns),
		AllNumbers:    []string{},
	}

	if c.medications != nil {
		if meds := c.medications.FindAll(text); meds != nil {
			elements.Medications = meds
		}
	}
	if numbers := numberPattern.FindAllString(text, -1); numbers != nil {
		elements.AllNumbers = numbers
	}
	return elements
}

type span struct {
	start, end int
	text       string
}

// findOrdered runs every pattern over text and merges the matches into
// first-occurrence order. Identical spans reported by more than one
// pattern are kept once.
func findOrdered(text string, patterns []*regexp.Regexp) []string {
	var spans []span
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]]})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	out := make([]string, 0, len(spans))
	last := span{start: -1, end: -1}
	for _, s := range spans {
		if s.start == last.start && s.end == last.end {
			continue
		}
		out = append(out, s.text)
		last = s
	}
	return out
}
