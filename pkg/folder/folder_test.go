package folder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framekeep/internal/testutil"
)

func TestValidateName(t *testing.T) {
	name, err := ValidateName("Show S01 (2020)")
	require.NoError(t, err)
	assert.Equal(t, "Show S01 (2020)", name)

	_, err = ValidateName("../escape")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = ValidateName("a/b")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = ValidateName(".hidden")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = ValidateName("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, filepath.Join(root, "Show", "frame01.jpg"), "x")

	path, err := Resolve(root, "Show")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Show"), path)

	_, err = Resolve(root, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseTitleYear(t *testing.T) {
	tests := []struct {
		input string
		title string
		year  int
	}{
		{"Movie (2024)", "Movie", 2024},
		{"Movie", "Movie", 0},
		{"Movie (draft)", "Movie (draft)", 0},
		{"Show S01 (2020)", "Show S01", 2020},
		{"(2020)", "(2020)", 0},
	}

	for _, tt := range tests {
		title, year := ParseTitleYear(tt.input)
		assert.Equal(t, tt.title, title, tt.input)
		assert.Equal(t, tt.year, year, tt.input)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, filepath.Join(dir, "B.jpg"), "b")
	testutil.CreateFile(t, filepath.Join(dir, "a.png"), "a")
	testutil.CreateFile(t, filepath.Join(dir, ".cover.jpg"), "hidden")
	testutil.CreateFile(t, filepath.Join(dir, "notes.txt"), "text")

	files, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "B.jpg"}, files)
}

func TestList(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, filepath.Join(root, "Show S01E02", "frame01.jpg"), "x")
	testutil.CreateFile(t, filepath.Join(root, "Plain", "frame01.jpg"), "y")
	testutil.CreateFile(t, filepath.Join(root, ".hidden", "frame01.jpg"), "z")

	entries, err := List(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	show := byName["Show S01E02"]
	assert.Equal(t, "Show", show.Title)
	assert.Equal(t, "01", show.Season)
	assert.Equal(t, "02", show.Episode)
	assert.Equal(t, 1, show.ImageCount)

	plain := byName["Plain"]
	assert.Equal(t, "Plain", plain.Title)
	assert.Empty(t, plain.Season)
}
