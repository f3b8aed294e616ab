// Package version handles version suffixes on frame filenames.
// A version suffix marks an alternate variant of the same logical image:
// 1-2 distinct uppercase ASCII letters appended to the stem before the
// extension, e.g. "frame01U.jpg" is the U variant of "frame01.jpg".
package version

import (
	"path/filepath"
	"regexp"
	"strings"
)

// trailingLettersRegex matches up to three trailing ASCII letters on a stem.
// Longer letter runs still match only their last three characters, which is
// enough to classify the run as invalid.
var trailingLettersRegex = regexp.MustCompile(`[A-Za-z]{1,3}$`)

// Parse extracts the version suffix from a filename.
// It returns (valid, invalid) where at most one is non-empty. A suffix is
// valid when it is 1-2 characters, all uppercase, with no repeated letter;
// any other trailing letter run is reported as invalid.
func Parse(name string) (valid, invalid string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	suffix := trailingLettersRegex.FindString(stem)
	if suffix == "" {
		return "", ""
	}

	if len(suffix) > 2 || suffix != strings.ToUpper(suffix) || hasRepeatedLetter(suffix) {
		return "", suffix
	}

	return suffix, ""
}

// Strip removes any trailing letter run (valid or not) from the stem so that
// family identity is computed consistently even for junk suffixes.
func Strip(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	return trailingLettersRegex.ReplaceAllString(stem, "") + ext
}

// Add inserts a version suffix before the file extension.
// An empty suffix returns the name unchanged.
func Add(name, suffix string) string {
	if suffix == "" {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	return stem + suffix + ext
}

func hasRepeatedLetter(s string) bool {
	var seen [26]bool
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			continue
		}
		if seen[r-'A'] {
			return true
		}
		seen[r-'A'] = true
	}

	return false
}
