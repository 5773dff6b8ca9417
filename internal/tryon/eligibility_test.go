package tryon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEligible(t *testing.T) {
	cases := []struct {
		category string
		want     bool
	}{
		{"", true},
		{"t-shirt", true},
		{"shirt", true},
		{"dress", true},
		{"upper_body", true},
		{"sunglasses", false},
		{"shoes", false},
		{"jewelry", false},
		// Case-insensitive
		{"BAGS", false},
		{"Sunglasses", false},
		{"T-SHIRT", true},
		// Clothing keyword beats accessory keyword
		{"hat with matching jacket", true},
		// Accessory keyword, no clothing keyword: rejected
		{"novelty-hat", false},
		// Unrecognized free text defaults to eligible
		{"kimono", true},
		{"something-else-entirely", true},
	}

	for _, tc := range cases {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.want, IsEligible(tc.category))
		})
	}
}

func TestIsEligible_PrecedenceRule(t *testing.T) {
	// "novelty-hat-with-sleeves" contains the accessory keyword "hat" and
	// no clothing keyword, so the accessory match wins.
	assert.False(t, IsEligible("novelty-hat-with-sleeves"))

	// Adding a clothing keyword flips it back to eligible.
	assert.True(t, IsEligible("novelty-hat-with-shirt-sleeves"))
}
