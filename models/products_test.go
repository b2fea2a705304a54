package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  string
		expectErr bool
	}{
		{raw: "", expected: ""},
		{raw: "0", expected: "0.00"},
		{raw: "149.9", expected: "149.90"},
		{raw: "9999.99", expected: "9999.99"},
		{raw: "12.50", expected: "12.50"},
		{raw: "10000", expectErr: true},
		{raw: "123456.78", expectErr: true},
		{raw: "-1", expectErr: true},
		{raw: "1.999", expectErr: true},
		{raw: "cheap", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			price, err := ParsePrice(tc.raw)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				assert.False(t, price.Valid)
				return
			}
			require.NoError(t, err)
			if tc.expected == "" {
				assert.False(t, price.Valid)
				return
			}
			require.True(t, price.Valid)
			assert.Equal(t, tc.expected, price.Decimal.StringFixed(2))
		})
	}
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"chair", "red"}, SearchTerms("chair red"))
	assert.Equal(t, []string{"chair", "red", "oak"}, SearchTerms(" chair,red\toak, "))
	assert.Empty(t, SearchTerms(" , "))
}
