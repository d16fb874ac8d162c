// Package validation provides request input validation for the medical
// translation API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/safety"
)

// Pre-compiled patterns, compiled once at package initialization
var (
	// Medication names: letters with French and Wolof accents, digits,
	// spaces, hyphens, apostrophes and periods
	medicationNameRegex = regexp.MustCompile(`^[a-zA-ZàâäéèêëïîôöùûüÿçñŋáóéÀÂÄÉÈÊËÏÎÔÖÙÛÜŸÇÑŊ0-9\s\-'\.]+$`)

	// Injection markers that have no business in clinical text. Checked
	// as lowercase substrings; strings.Contains beats regex here. The
	// SQL and shell metacharacter lists used for query parameters would
	// reject legitimate prescriptions ("500 mg; 2 fois par jour"), so
	// free text only gets the code injection subset.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:",
		"onload=", "onerror=", "onclick=", "onmouseover=",
		"eval(", "exec(", "expression(", "__import__",
	}
)

// ValidatorImpl implements the interfaces.InputValidator interface
type ValidatorImpl struct {
	maxInputLength int
}

// NewValidator creates an input validator that accepts clinical text up
// to maxInputLength characters.
func NewValidator(maxInputLength int) interfaces.InputValidator {
	return &ValidatorImpl{maxInputLength: maxInputLength}
}

// ValidateText checks free clinical text before it is translated
func (v *ValidatorImpl) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if !utf8.ValidString(text) {
		return fmt.Errorf("text is not valid UTF-8")
	}

	if length := utf8.RuneCountInString(text); length > v.maxInputLength {
		return fmt.Errorf("text too long: %d characters, maximum %d", length, v.maxInputLength)
	}

	lowerText := strings.ToLower(text)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerText, pattern) {
			return fmt.Errorf("text contains potentially dangerous content")
		}
	}

	// Repeated characters are a DoS tell, not a prescription
	if hasExcessiveRepetition(text) {
		return fmt.Errorf("text contains excessive character repetition")
	}

	return nil
}

// ValidateLanguageTag checks a language tag against the supported set
func (v *ValidatorImpl) ValidateLanguageTag(tag string) error {
	if tag == safety.LangFrench || tag == safety.LangWolof {
		return nil
	}
	return fmt.Errorf("unsupported language: %q (accepted: %s, %s)",
		tag, safety.LangFrench, safety.LangWolof)
}

// ValidateMedicationName checks a single medication name before it
// enters the lexicon
func (v *ValidatorImpl) ValidateMedicationName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("medication name cannot be empty")
	}

	if length := utf8.RuneCountInString(trimmed); length < 2 {
		return fmt.Errorf("medication name too short: minimum 2 characters")
	} else if length > 100 {
		return fmt.Errorf("medication name too long: maximum 100 characters")
	}

	if !medicationNameRegex.MatchString(trimmed) {
		return fmt.Errorf("medication name contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes and periods are allowed")
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("medication name contains excessive character repetition")
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with the
// same character repeated more than 10 times consecutively
func hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
