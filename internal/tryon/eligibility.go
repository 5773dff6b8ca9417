package tryon

import "strings"

// The try-on model only handles garments. Categories matching an accessory
// keyword and no clothing keyword are rejected; everything else, including
// free-text categories it has never seen, is allowed (fail-open).
var (
	clothingKeywords = []string{
		"t-shirt", "shirt", "pants", "jeans", "shorts", "dress", "jacket",
		"coat", "hoodie", "sweater", "top", "bottom", "upper_body", "lower_body",
	}
	accessoryKeywords = []string{
		"bags", "belts", "scarves", "gloves", "sunglasses", "hat", "watch",
		"jewelry", "shoes",
	}
)

// IsEligible reports whether a garment category is supported for try-on.
// An absent category is assumed wearable.
func IsEligible(category string) bool {
	if category == "" {
		return true
	}
	cat := strings.ToLower(category)
	return containsAny(cat, clothingKeywords) || !containsAny(cat, accessoryKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
