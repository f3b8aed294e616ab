package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   string
		invalid string
	}{
		{
			name:  "no suffix",
			input: "frame01.jpg",
		},
		{
			name:  "single uppercase letter",
			input: "frame01U.jpg",
			valid: "U",
		},
		{
			name:  "two distinct uppercase letters",
			input: "frame01UW.jpg",
			valid: "UW",
		},
		{
			name:    "repeated letter is invalid",
			input:   "frame01EE.jpg",
			invalid: "EE",
		},
		{
			name:    "three letters is invalid",
			input:   "frame01ABC.jpg",
			invalid: "ABC",
		},
		{
			name:    "lowercase is invalid",
			input:   "frame01e.jpg",
			invalid: "e",
		},
		{
			name:    "mixed case is invalid",
			input:   "frame01Ab.jpg",
			invalid: "Ab",
		},
		{
			name:  "digits only stem",
			input: "0001.jpg",
		},
		{
			name:    "long letter run matches last three",
			input:   "frame.jpg",
			invalid: "ame",
		},
		{
			name:  "suffix without extension",
			input: "frame01U",
			valid: "U",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, invalid := Parse(tt.input)
			assert.Equal(t, tt.valid, valid)
			assert.Equal(t, tt.invalid, invalid)

			if valid != "" {
				assert.Empty(t, invalid, "at most one of valid/invalid may be set")
			}
		})
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid suffix removed",
			input:    "frame01U.jpg",
			expected: "frame01.jpg",
		},
		{
			name:     "invalid suffix also removed",
			input:    "frame01EE.jpg",
			expected: "frame01.jpg",
		},
		{
			name:     "no suffix unchanged",
			input:    "frame01.jpg",
			expected: "frame01.jpg",
		},
		{
			name:     "three junk letters removed",
			input:    "frame01ABC.jpg",
			expected: "frame01.jpg",
		},
		{
			name:     "extension preserved",
			input:    "shot 0002W.png",
			expected: "shot 0002.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Strip(tt.input))
		})
	}
}

func TestAdd(t *testing.T) {
	assert.Equal(t, "frame01U.jpg", Add("frame01.jpg", "U"))
	assert.Equal(t, "frame01.jpg", Add("frame01.jpg", ""))
	assert.Equal(t, "frame01UW", Add("frame01", "UW"))
}

// Round trip: stripping then re-adding a valid suffix parses back to the
// same suffix with nothing reported invalid.
func TestParseAddStripRoundTrip(t *testing.T) {
	for _, suffix := range []string{"U", "W", "UW", "AB"} {
		for _, name := range []string{"frame01.jpg", "Show S01E02 〜 0003.png", "clip 0004W.webp"} {
			rebuilt := Add(Strip(name), suffix)
			valid, invalid := Parse(rebuilt)

			assert.Equal(t, suffix, valid, "name=%q suffix=%q", name, suffix)
			assert.Empty(t, invalid)
		}
	}
}
