package gateway

import (
	"fmt"
	"strings"
)

// CaptionCategory is the closed set of tones a caption suggestion can carry.
// Values outside the set are rejected at decode time.
type CaptionCategory string

const (
	CategoryFunny     CaptionCategory = "Funny"
	CategorySarcastic CaptionCategory = "Sarcastic"
	CategoryRelatable CaptionCategory = "Relatable"
	CategoryDark      CaptionCategory = "Dark"
	CategoryWholesome CaptionCategory = "Wholesome"
)

// Categories lists all valid categories in display order.
var Categories = []CaptionCategory{
	CategoryFunny,
	CategorySarcastic,
	CategoryRelatable,
	CategoryDark,
	CategoryWholesome,
}

// ParseCategory matches a remote-supplied category string against the enum,
// ignoring case and surrounding whitespace. Anything else is an error.
func ParseCategory(s string) (CaptionCategory, error) {
	trimmed := strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("gateway: unknown caption category %q", s)
}

// Valid reports whether the category is one of the canonical values.
func (c CaptionCategory) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}
