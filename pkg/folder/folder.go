// Package folder provides folder-name validation and image listing for
// frame library folders.
package folder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"framekeep/pkg/episode"
)

var (
	// ErrInvalidName indicates a folder name with path separators or a
	// hidden-name prefix.
	ErrInvalidName = errors.New("invalid folder name")
	// ErrNotFound indicates the folder does not exist under the root.
	ErrNotFound = errors.New("folder not found")
)

// imageExts lists recognized image file extensions, lowercase.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
}

// ValidateName rejects folder names that contain path separators or start
// with a dot, returning the name unchanged when safe.
func ValidateName(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: contains path separators", ErrInvalidName)
	}
	if strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: hidden folders not allowed", ErrInvalidName)
	}

	return name, nil
}

// Resolve validates name and returns the absolute folder path under root.
func Resolve(root, name string) (string, error) {
	safe, err := ValidateName(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(root, safe)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, safe)
	}

	return path, nil
}

// ParseTitleYear splits a folder display name like "Title (2020)" into
// title and year. A missing or non-numeric year suffix yields year 0.
func ParseTitleYear(name string) (title string, year int) {
	title = name
	if !strings.HasSuffix(name, ")") {
		return title, 0
	}

	left := strings.LastIndex(name, " (")
	if left == -1 {
		return title, 0
	}

	maybeYear := name[left+2 : len(name)-1]
	n, err := strconv.Atoi(maybeYear)
	if err != nil || maybeYear == "" {
		return title, 0
	}

	return name[:left], n
}

// ListImages returns the non-hidden image filenames directly inside dir,
// sorted case-insensitively. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, entry.Name())
	}

	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})

	return files, nil
}

// Entry describes one candidate folder under the library root.
type Entry struct {
	Name       string
	Title      string
	Season     string
	Episode    string
	ImageCount int
	ModTimeNS  int64
}

// List scans root for non-hidden folders and returns them newest first.
// Folders that cannot be read still appear with a zero image count.
func List(root string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}

		season, ep := episode.Parse(de.Name())
		title := de.Name()
		if season != "" || ep != "" {
			title = episode.StripMarkers(title)
		}

		count := 0
		if images, err := ListImages(filepath.Join(root, de.Name())); err == nil {
			count = len(images)
		}

		var mtime int64
		if info, err := de.Info(); err == nil {
			mtime = info.ModTime().UnixNano()
		}

		entries = append(entries, Entry{
			Name:       de.Name(),
			Title:      title,
			Season:     season,
			Episode:    ep,
			ImageCount: count,
			ModTimeNS:  mtime,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTimeNS != entries[j].ModTimeNS {
			return entries[i].ModTimeNS > entries[j].ModTimeNS
		}
		return strings.ToLower(entries[i].Name) > strings.ToLower(entries[j].Name)
	})

	return entries, nil
}
