package label

import (
	"fmt"
	"regexp"
	"strings"
)

// USPSPrefix is printed in front of some domestic tracking numbers and is
// picked up by text extraction as part of the same region.
const USPSPrefix = "USPSTRACKING#"

var (
	domesticPattern = regexp.MustCompile(`^\d{22}$`)
	foreignPattern  = regexp.MustCompile(`^[A-Z]{2}\d{9}US$`)
)

// TrackingNumber is a tracking number read from a label page.
type TrackingNumber struct {
	Type       FieldType `json:"type" yaml:"type"`
	Value      string    `json:"value" yaml:"value"`
	SourceFile string    `json:"source_file" yaml:"source_file"`
	PageNumber int       `json:"page" yaml:"page"` // 1-indexed within SourceFile
}

func (t TrackingNumber) String() string {
	return fmt.Sprintf("%s:%s", t.Type, t.Value)
}

// Normalize strips whitespace, non-breaking spaces and the USPS prefix from a
// concatenated region value.
func Normalize(value string) string {
	value = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\t', '\n', '\r':
			return -1
		}
		return r
	}, value)
	return strings.TrimPrefix(value, USPSPrefix)
}

// Valid reports whether value has the tracking number format for t.
// Domestic numbers are exactly 22 digits; foreign numbers are two uppercase
// letters, nine digits and "US".
func Valid(t FieldType, value string) bool {
	switch t.Kind() {
	case KindDomestic:
		return domesticPattern.MatchString(value)
	case KindForeign:
		return foreignPattern.MatchString(value)
	default:
		return false
	}
}

// Parse normalizes value and returns a tracking number if it is valid for t.
func Parse(t FieldType, value, sourceFile string, page int) (TrackingNumber, bool) {
	value = Normalize(value)
	if !Valid(t, value) {
		return TrackingNumber{}, false
	}
	return TrackingNumber{Type: t, Value: value, SourceFile: sourceFile, PageNumber: page}, true
}
