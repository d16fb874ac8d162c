// Package safety implements the translation safety engine for clinical
// text: extraction of critical elements, dosage and number restoration,
// placeholder masking around the translator call, and the ordered safety
// checks that accept or reject a translation. All operations are pure
// and safe for concurrent use.
package safety

import "regexp"

// Language tags accepted by the engine (NLLB-200 codes)
const (
	LangFrench = "fra_Latn"
	LangWolof  = "wol_Latn"
)

// Error codes carried by a rejecting SafetyCheckResult. All four are
// terminal: a rejected translation must never be shown to a patient.
const (
	CodeNumericIntegrity   = "NUMERIC_INTEGRITY_VIOLATION"
	CodeNegationLoss       = "NEGATION_LOSS"
	CodeEmptyTranslation   = "EMPTY_TRANSLATION"
	CodePlaceholderResidue = "PLACEHOLDER_RESIDUE"
)

// numberPattern matches standalone integers and decimals with either a
// dot or a French comma separator.
var numberPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`)

// dosagePatterns cover quantities with units, dose counts, frequencies,
// times of day and the Wolof frequency form "N yoon". The compound
// "matin et soir" comes before its parts so it matches as a unit.
var dosagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:mg|g|ml|l)\b`),
	regexp.MustCompile(`(?i)\b\d+\s*(?:cp|comprimés?|gélules?|gouttes?)\b`),
	regexp.MustCompile(`(?i)\b\d+\s*(?:fois|x)\s*(?:par|/)\s*(?:jours?|semaines?|mois)\b`),
	regexp.MustCompile(`(?i)\b(?:matin et soir|matin|midi|soir|nuit)\b`),
	regexp.MustCompile(`(?i)\b\d+\s*yoon\b`),
}

// medicalValuePatterns cover temperatures, blood pressure readings and
// laboratory values with their units.
var medicalValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?°[CF]?\b`),
	regexp.MustCompile(`(?i)\b\d+/\d+\s*(?:mmHg)?\b`),
	regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:g/dl|mmol/l|UI/l)\b`),
}

// placeholderPattern matches the tokens Mask emits, plus digit-suffixed
// MEDICATION variants a translator can mangle a letter token into.
// Case-sensitive: the placeholders are uppercase by construction and a
// lowercased leftover is no longer a placeholder.
var placeholderPattern = regexp.MustCompile(`\b(?:MEDICATION(?:[A-Z]|\d+)|DOSAGE\d+|VALUE\d+)\b`)

// frenchNegations are the French negation markers whose loss inverts
// the meaning of an instruction. Checked as lowercase substrings.
var frenchNegations = []string{
	"ne pas", "n'a pas", "ne jamais", "jamais",
	"aucun", "aucune",
	"interdit", "interdite",
	"contre-indiqué", "contre-indication",
	"éviter", "à éviter",
	"sans", "sauf", "excepté",
}

// wolofNegations are the Wolof negation markers: bul (imperative "do
// not"), du (negative copula), dara ("nothing"), amul ("there is no").
var wolofNegations = []string{"bul", "du", "dara", "amul"}

// negationVocab returns the negation vocabularies to scan for in the
// source and expect in the translation. Tags other than fra_Latn are
// treated as Wolof.
func negationVocab(sourceLang string) (source, target []string) {
	if sourceLang == LangFrench {
		return frenchNegations, wolofNegations
	}
	return wolofNegations, frenchNegations
}
