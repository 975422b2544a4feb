// Package extractor isolates the ingredient declaration inside raw OCR text
// read from a product label.
package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// markerPattern matches the "Ingredients" heading, optionally followed by a colon.
var markerPattern = regexp.MustCompile(`(?i)ingredients\s*:?`)

// ExtractIngredients returns the text after the first "Ingredients" marker,
// trimmed.  When no marker is present the whole trimmed text is returned.
// The input is NFKC-folded first so that full-width letters and compatibility
// ligatures produced by OCR compare like their ASCII forms.
func ExtractIngredients(ocrText string) string {
	text := norm.NFKC.String(ocrText)
	loc := markerPattern.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[loc[1]:])
}

// HasMarker reports whether the OCR text carries an "Ingredients" heading.
func HasMarker(ocrText string) bool {
	return markerPattern.MatchString(norm.NFKC.String(ocrText))
}

//Personal.AI order the ending
