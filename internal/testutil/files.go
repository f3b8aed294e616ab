// Package testutil provides shared file fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateFile writes content to path, creating parent directories as needed.
func CreateFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	require.NoError(t, err)

	err = os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
}

// ListNames returns the sorted names of all non-hidden files directly in dir.
func ListNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names
}

// ReadContents returns a filename->content map for all non-hidden files
// directly in dir.
func ReadContents(t *testing.T, dir string) map[string]string {
	t.Helper()

	contents := make(map[string]string)
	for _, name := range ListNames(t, dir) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		contents[name] = string(data)
	}

	return contents
}

// ContentSet returns the multiset of file contents in dir as a count map,
// for no-data-loss assertions that ignore filenames.
func ContentSet(t *testing.T, dir string) map[string]int {
	t.Helper()

	set := make(map[string]int)
	for _, content := range ReadContents(t, dir) {
		set[content]++
	}

	return set
}
