package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Soap", Bath},
		{"  TOILET PAPER ", Toilet},
		{"dish soap", Kitchen},
		{"Dishwasher tablets", Kitchen},
		{"lavender hand soap", Bath},
		{"AA batteries", Household},
		{"laundry pods", Household},
		{"flushable wipes", Toilet},
		{"tea lights", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.input))
		})
	}
}

func TestSuggestReturnsPreset(t *testing.T) {
	for _, cat := range exact {
		assert.Contains(t, Presets, cat)
	}
	for _, k := range keywords {
		assert.Contains(t, Presets, k.category, k.word)
	}
}
