package itinerary

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// genericPlaceWords are stripped from the primary part of a location so that
// "Siargao Island" and "Siargao" normalize the same.
var genericPlaceWords = regexp.MustCompile(`\b(islands?|isle|city|town|province|district|barangay|state|county|municipality|region|village|prefecture|parish)\b`)

// minFragmentLen guards containment matches against short, ambiguous fragments.
const minFragmentLen = 3

// NormalizeLocation canonicalizes a free-text place name: accents folded,
// lower-cased, generic descriptor words removed from the part before the
// first comma, whitespace collapsed, and the region suffix reattached.
//
//	NormalizeLocation("Siargao Island, Philippines") == "siargao, philippines"
//	NormalizeLocation("  Quezon  City ")             == "quezon"
func NormalizeLocation(s string) string {
	s = lowerString(foldAccents(s))
	primary, region, hasRegion := strings.Cut(s, ",")

	stripped := collapseSpace(genericPlaceWords.ReplaceAllString(primary, " "))
	if stripped == "" {
		// "City" on its own is a name, not a descriptor.
		stripped = collapseSpace(primary)
	}
	if hasRegion {
		if r := collapseSpace(region); r != "" {
			return stripped + ", " + r
		}
	}
	return stripped
}

// IsDuplicateLocation reports whether a and b name the same place.
// Normalized strings match when equal, or when the longer contains the
// shorter and the shorter is longer than three characters.
//
//	IsDuplicateLocation("Siargao", "Siargao, Philippines") == true
//	IsDuplicateLocation("Lake Como", "Como")               == true  // "lake como" contains "como"
//	IsDuplicateLocation("Bali", "Manila")                  == false
//	IsDuplicateLocation("Rome", "Romeo")                   == true  // containment is substring-based
//	IsDuplicateLocation("Ubu", "Ubud")                     == false // "ubu" is too short
func IsDuplicateLocation(a, b string) bool {
	na, nb := NormalizeLocation(a), NormalizeLocation(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	short, long := na, nb
	if len(short) > len(long) {
		short, long = long, short
	}
	return len(short) > minFragmentLen && strings.Contains(long, short)
}

// FoldName case-folds and trims an activity name for set membership checks.
func FoldName(name string) string {
	return collapseSpace(lowerString(foldAccents(name)))
}

// lowerString builds a fresh Caser per call; Casers are stateful and must
// not be shared between goroutines.
func lowerString(s string) string {
	return cases.Lower(language.Und).String(s)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
