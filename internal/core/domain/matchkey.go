// internal/core/domain/matchkey.go
package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fragment widths of the derived match key. The key is a fixed-width,
// sortable concatenation; every width and normalization rule here is an
// interoperability contract with keys already written to storage, not a
// style choice.
const (
	matchKeyTitleWidth       = 70
	matchKeyPartNameWidth    = 30
	matchKeyPartNumberWidth  = 10
	matchKeyDateWidth        = 4
	matchKeyPaginationWidth  = 4
	matchKeyEditionWidth     = 3
	matchKeyPublisherWidth   = 10
	matchKeyContributorWidth = 70
	matchKeyDatesWidth       = 15
)

// resourceTypeCodes maps instance type references to the single-letter
// type-of-resource code used in the match key. Unknown types map to "_".
var resourceTypeCodes = map[string]string{
	"6312d172-f0cf-40f6-b27d-9fa8feaf332f": "a", // text
	"497b5090-3da2-486c-b57f-de5bb3c2e26d": "c", // notated music
	"526aa04d-9289-4511-8866-349299592c18": "e", // cartographic image
	"80c0c134-0240-4b63-99d0-6ca755d5f433": "e", // cartographic dataset
	"535e3160-763a-42f9-b0c0-d8ed7df6e2a2": "g", // still image
	"225faa14-f9bf-4ecd-990d-69433c912434": "g", // two-dimensional moving image
	"3be24c14-3551-4180-9292-26a786649c8b": "i", // performed music
	"9bce18bd-45bf-4949-8fa8-63163e4b7d7f": "i", // sounds
	"c1e95c2b-4efc-48cf-9e71-edb622cf0c22": "j", // spoken word
	"c7f7446f-4642-4d97-88c9-55bae2ad6c7f": "m", // computer program
	"a2c91e87-6bab-44d6-8adb-1fd02481fc4f": "m", // computer dataset
	"df5dddff-9c30-4507-8b82-119ff972d4d7": "p", // tactile text
	"c208544b-9e28-44fa-a13c-f4093d72f798": "r", // three-dimensional form
}

// Contributor name type references accepted as the match key's contributor
// fragment, in no particular order of preference: the first contributor of
// any of these types wins.
const (
	nameTypePersonal  = "2b94c631-fca9-4892-a730-03ee529ffe2a"
	nameTypeCorporate = "2e48e713-17f3-4c13-a9f8-23845bb210aa"
	nameTypeMeeting   = "e8b311a6-3b21-43f2-a269-dd9310cb2d0e"
)

// Classification type reference for government document numbers.
const classificationTypeGovDoc = "9075b5f8-7d97-49e1-a431-73fdd468d476"

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// BuildMatchKey derives the deterministic fingerprint of an instance from
// its descriptive properties. Pure and total: missing fields map to
// fixed-width "_" placeholders, so the function never fails and two bags
// with the same descriptive fields always produce identical keys.
//
// An explicit matchKey string property is NOT consulted here; callers that
// want the verbatim-override behavior go through Instance.MatchKey.
func BuildMatchKey(props map[string]any) string {
	keyObj, _ := props["matchKey"].(map[string]any)

	var b strings.Builder
	b.WriteString(padFragment(matchKeyTitle(props, keyObj), matchKeyTitleWidth))
	b.WriteString(typeOfResourceCode(props))
	b.WriteString(padFragment(stringField(keyObj, "partName"), matchKeyPartNameWidth))
	b.WriteString(padFragment(stringField(keyObj, "partNumber"), matchKeyPartNumberWidth))
	b.WriteString(publicationDate(props))
	b.WriteString(padDigitRun(firstPhysicalDescription(props), matchKeyPaginationWidth))
	b.WriteString(padAlnumRun(firstEdition(props), matchKeyEditionWidth))
	b.WriteString(padFragment(firstPublisher(props), matchKeyPublisherWidth))
	b.WriteString(padFragment(firstContributorName(props), matchKeyContributorWidth))
	b.WriteString(padFragment(inclusiveDates(props, keyObj), matchKeyDatesWidth))
	b.WriteString(normalizeFragment(govDocNumber(props)))
	b.WriteString(formatChar(props, keyObj))
	return b.String()
}

func matchKeyTitle(props, keyObj map[string]any) string {
	if t := stringField(keyObj, "title"); t != "" {
		return t
	}
	if t, ok := props["title"].(string); ok {
		return t
	}
	return ""
}

func typeOfResourceCode(props map[string]any) string {
	if id, ok := props["instanceTypeId"].(string); ok {
		if code, ok := resourceTypeCodes[id]; ok {
			return code
		}
	}
	return "_"
}

func publicationDate(props map[string]any) string {
	for _, pub := range objectsAt(props, "publication") {
		if date, ok := pub["dateOfPublication"].(string); ok {
			if run := digitRun(date, matchKeyDateWidth); len(run) == matchKeyDateWidth {
				return run
			}
		}
		break
	}
	return "0000"
}

func firstPhysicalDescription(props map[string]any) string {
	if list, ok := props["physicalDescriptions"].([]any); ok && len(list) > 0 {
		if s, ok := list[0].(string); ok {
			return s
		}
	}
	return ""
}

func firstEdition(props map[string]any) string {
	if list, ok := props["editions"].([]any); ok && len(list) > 0 {
		if s, ok := list[0].(string); ok {
			return s
		}
	}
	return ""
}

func firstPublisher(props map[string]any) string {
	for _, pub := range objectsAt(props, "publication") {
		if p, ok := pub["publisher"].(string); ok {
			return p
		}
		break
	}
	return ""
}

func firstContributorName(props map[string]any) string {
	for _, c := range objectsAt(props, "contributors") {
		switch c["contributorNameTypeId"] {
		case nameTypePersonal, nameTypeCorporate, nameTypeMeeting:
			if name, ok := c["name"].(string); ok {
				return name
			}
		}
	}
	return ""
}

func inclusiveDates(props, keyObj map[string]any) string {
	if d := stringField(keyObj, "inclusiveDates"); d != "" {
		return d
	}
	if dates, ok := props["dates"].(map[string]any); ok {
		d1, _ := dates["date1"].(string)
		d2, _ := dates["date2"].(string)
		if d1 != "" && d2 != "" {
			return d1 + "-" + d2
		}
		return d1
	}
	return ""
}

func govDocNumber(props map[string]any) string {
	for _, c := range objectsAt(props, "classifications") {
		if c["classificationTypeId"] == classificationTypeGovDoc {
			if num, ok := c["classificationNumber"].(string); ok {
				return num
			}
		}
	}
	return ""
}

// formatChar is "e" for electronic resources and "p" for everything else.
// Electronic is signaled by a medium of "electronic resource" or the
// conventional bracketed title marker.
func formatChar(props, keyObj map[string]any) string {
	medium := strings.ToLower(stringField(keyObj, "medium"))
	if strings.Contains(medium, "electronic") {
		return "e"
	}
	if t, ok := props["title"].(string); ok {
		if strings.Contains(strings.ToLower(t), "[electronic resource]") {
			return "e"
		}
	}
	return "p"
}

// matchKeyStopwords are dropped from word-based fragments.
var matchKeyStopwords = map[string]bool{"a": true, "an": true, "the": true}

// normalizeFragment lower-cases, strips accents, collapses punctuation and
// whitespace, removes stopwords, and joins the remaining words with "_".
func normalizeFragment(s string) string {
	if s == "" {
		return ""
	}
	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !matchKeyStopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "_")
}

// padFragment normalizes s and fits it to exactly width runes, padding with "_".
func padFragment(s string, width int) string {
	s = normalizeFragment(s)
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat("_", width-len(runes))
}

// digitRun returns the first run of consecutive digits in s, truncated to max.
func digitRun(s string, max int) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return truncate(s[start:i], max)
		}
	}
	if start >= 0 {
		return truncate(s[start:], max)
	}
	return ""
}

// alnumRun returns the first run of consecutive letters or digits in s.
func alnumRun(s string, max int) string {
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return truncate(s[start:i], max)
		}
	}
	if start >= 0 {
		return truncate(s[start:], max)
	}
	return ""
}

func padDigitRun(s string, width int) string {
	run := strings.ToLower(digitRun(s, width))
	return run + strings.Repeat("_", width-len([]rune(run)))
}

func padAlnumRun(s string, width int) string {
	run := strings.ToLower(alnumRun(s, width))
	return run + strings.Repeat("_", width-len([]rune(run)))
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

func objectsAt(props map[string]any, key string) []map[string]any {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
