package safety

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yamasante/medtranslate-api/logging"
)

// Restore repairs dosage and number tokens the translator corrupted.
// For each source token missing verbatim from the translation, the
// translated token at the same ordinal position is substituted back.
// Dosages are repaired first, then remaining numbers on the partially
// repaired text. Tokens without a positional counterpart are left for
// Verify to catch.
func (c *Checker) Restore(source, translated string) string {
	result := translated

	sourceDosages := findOrdered(source, dosagePatterns)
	translatedDosages := findOrdered(translated, dosagePatterns)
	for i, dosage := range sourceDosages {
		if strings.Contains(result, dosage) {
			continue
		}
		if i >= len(translatedDosages) {
			continue
		}
		repaired, ok := replaceFirstToken(result, translatedDosages[i], dosage)
		if !ok {
			continue
		}
		logging.Warn("Restored corrupted dosage in translation",
			"from", translatedDosages[i], "to", dosage)
		result = repaired
	}

	sourceNumbers := numberPattern.FindAllString(source, -1)
	resultNumbers := numberPattern.FindAllString(result, -1)
	for i, number := range sourceNumbers {
		if strings.Contains(result, number) {
			continue
		}
		if i >= len(resultNumbers) {
			continue
		}
		repaired, ok := replaceFirstToken(result, resultNumbers[i], number)
		if !ok {
			continue
		}
		logging.Warn("Restored corrupted number in translation",
			"from", resultNumbers[i], "to", number)
		result = repaired
	}

	return result
}

// replaceFirstToken replaces the first occurrence of token in s that
// stands on its own, not embedded in a longer word or number. Plain
// substring replacement would corrupt "1500 mg" while targeting
// "500 mg".
func replaceFirstToken(s, token, replacement string) (string, bool) {
	if token == "" {
		return s, false
	}
	for start := 0; start <= len(s)-len(token); {
		i := strings.Index(s[start:], token)
		if i < 0 {
			break
		}
		i += start
		if tokenBoundary(s, i, i+len(token)) {
			return s[:i] + replacement + s[i+len(token):], true
		}
		start = i + 1
	}
	return s, false
}

// tokenBoundary reports whether s[start:end] is delimited by non
// alphanumeric runes on both sides. Unlike the ASCII word boundary in
// the match patterns, this is Unicode-aware, so accented French word
// tails count as word characters.
func tokenBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
