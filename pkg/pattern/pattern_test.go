package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		values   Values
		expected string
	}{
		{
			name:     "plain substitution",
			pattern:  "{{ title }} 〜 {{ counter|pad:4 }}.jpg",
			values:   Values{"title": "Show", "counter": 1},
			expected: "Show 〜 0001.jpg",
		},
		{
			name:     "pad passes strings through",
			pattern:  "E{{ episode|pad:2 }}",
			values:   Values{"episode": "IN"},
			expected: "EIN",
		},
		{
			name:     "pad normalizes numeric strings",
			pattern:  "S{{ season|pad:2 }}",
			values:   Values{"season": "1"},
			expected: "S01",
		},
		{
			name:     "conditional section included",
			pattern:  "{{ title }}{% if year %} ({{ year }}){% endif %}",
			values:   Values{"title": "Movie", "year": 2024},
			expected: "Movie (2024)",
		},
		{
			name:     "conditional section omitted",
			pattern:  "{{ title }}{% if year %} ({{ year }}){% endif %}",
			values:   Values{"title": "Movie", "year": 0},
			expected: "Movie",
		},
		{
			name:     "unknown field renders empty",
			pattern:  "{{ title }}{{ nope }}",
			values:   Values{"title": "X"},
			expected: "X",
		},
		{
			name: "full episode pattern",
			pattern: "{{ title }}{% if season %} S{{ season|pad:2 }}{% endif %}" +
				"{% if episode %}E{{ episode|pad:2 }}{% endif %} 〜 {{ counter|pad:4 }}.jpg",
			values:   Values{"title": "Show", "season": "1", "episode": "3", "counter": 12},
			expected: "Show S01E03 〜 0012.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.pattern, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderMalformed(t *testing.T) {
	_, err := Render("{{ title }{% if x %}", Values{"title": "X"})
	assert.ErrorIs(t, err, ErrMalformedPattern)
}

func TestRenderFilename(t *testing.T) {
	got, err := RenderFilename("{{ title }} {{ counter|pad:3 }}", Values{"title": "Show", "counter": 7}, ".png")
	require.NoError(t, err)
	assert.Equal(t, "Show 007.png", got)

	got, err = RenderFilename("{{ title }}.jpg", Values{"title": "Show"}, ".png")
	require.NoError(t, err)
	assert.Equal(t, "Show.jpg", got)
}
