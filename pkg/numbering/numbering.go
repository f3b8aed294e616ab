// Package numbering groups kept frames into version families and assigns
// dense per-bucket counters, producing the final filename for every frame.
//
// Assignment is a pure left-to-right scan over the caller-supplied order:
// no sorting happens here, so invoking it twice over the same order yields
// the identical result. The commit orchestrator relies on that to run a
// preview pass and a final pass without divergence.
package numbering

import (
	"fmt"
	"path/filepath"
	"strings"

	"framekeep/pkg/episode"
	"framekeep/pkg/pattern"
	"framekeep/pkg/version"
)

// Options carries the naming inputs shared by every frame in a folder.
type Options struct {
	Pattern string
	Title   string
	Year    int
}

// Assignment is the numbering result for a single kept frame.
type Assignment struct {
	Name      string      // current filename
	Base      string      // filename with version suffix stripped
	Suffix    string      // valid version suffix, empty otherwise
	Key       episode.Key // bucket parsed from the base name
	Counter   int
	FinalName string
}

type familyKey struct {
	key  episode.Key
	base string
}

// Assign numbers names in order and renders their final filenames.
//
// The bucket key is parsed from the base name only, so a version suffix can
// never perturb the season/episode detection. The first occurrence of a base
// name takes the bucket's next counter; later occurrences are version
// siblings and reuse it. Valid suffixes are re-applied to the rendered name;
// junk suffixes are dropped.
func Assign(names []string, opts Options) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(names))
	nextCounter := make(map[episode.Key]int)
	familyCounter := make(map[familyKey]int)

	for _, name := range names {
		valid, _ := version.Parse(name)
		// Junk suffixes are stripped too, so family identity stays
		// consistent; they just never reappear on the output name.
		base := version.Strip(name)
		key := episode.KeyFor(base)

		family := familyKey{key: key, base: base}
		counter, seen := familyCounter[family]
		if !seen {
			counter = nextCounter[key] + 1
			nextCounter[key] = counter
			familyCounter[family] = counter
		}

		finalName, err := render(opts, key, counter, filepath.Ext(base))
		if err != nil {
			return nil, fmt.Errorf("render name for %q: %w", name, err)
		}

		assignments = append(assignments, Assignment{
			Name:      name,
			Base:      base,
			Suffix:    valid,
			Key:       key,
			Counter:   counter,
			FinalName: version.Add(finalName, valid),
		})
	}

	return assignments, nil
}

// FallbackName returns a disambiguated variant of the final name embedding
// the bucket tag and counter. It is used when the preferred destination is
// occupied by a file that cannot be removed. Attempts beyond the first get
// a numeric tail.
func (a Assignment) FallbackName(attempt int) string {
	ext := filepath.Ext(a.FinalName)
	stem := strings.TrimSuffix(a.FinalName, ext)

	tag := a.Key.Tag()
	if tag != "" {
		tag += "-"
	}

	name := fmt.Sprintf("%s#%s%04d", stem, tag, a.Counter)
	if attempt > 1 {
		name = fmt.Sprintf("%s-%d", name, attempt)
	}

	return name + ext
}

func render(opts Options, key episode.Key, counter int, ext string) (string, error) {
	values := pattern.Values{
		"title":   opts.Title,
		"year":    opts.Year,
		"season":  key.Season,
		"episode": key.Episode,
		"counter": counter,
	}

	return pattern.RenderFilename(opts.Pattern, values, ext)
}
