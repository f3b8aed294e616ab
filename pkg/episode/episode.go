// Package episode parses season/episode markers from frame filenames and
// folder names, and defines the (season, episode) bucket used for counter
// numbering. Episodes are numeric, or the special markers IN (intro) and
// OU (outro).
package episode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// markerRegex matches "S01", "S01E02", "S01EIN" or a standalone "E02"/"EIN"/
// "EOU". Word boundaries keep plain frame numbers like "frame01" from
// matching.
var markerRegex = regexp.MustCompile(`(?i)\b(?:S(\d{1,3})(?:E(\d{1,4}|IN|OU))?|E(\d{1,4}|IN|OU))\b`)

// titleMarkerRegex matches season/episode markers embedded in a display
// title, including the surrounding space, so they can be stripped.
var titleMarkerRegex = regexp.MustCompile(`(?i)\s+S\d+E[A-Z0-9]+|\s+S\d+|\s+E[A-Z0-9]+`)

// Key identifies an episode bucket. Both fields may be empty, which is the
// General bucket for frames without any marker.
type Key struct {
	Season  string
	Episode string
}

// Parse extracts season and episode identifiers from a name.
// Absence of a marker yields ("", ""). IN/OU markers are normalized to
// uppercase; numeric identifiers keep their original zero padding.
func Parse(name string) (season, episode string) {
	m := markerRegex.FindStringSubmatch(name)
	if m == nil {
		return "", ""
	}

	season = m[1]
	episode = m[2]
	if episode == "" {
		episode = m[3]
	}

	if isSpecial(episode) {
		episode = strings.ToUpper(episode)
	}

	return season, episode
}

// KeyFor parses a name into its bucket key.
func KeyFor(name string) Key {
	season, ep := Parse(name)
	return Key{Season: season, Episode: ep}
}

// StripMarkers removes season/episode markers from a display title,
// e.g. "Show S01E03" becomes "Show".
func StripMarkers(title string) string {
	return strings.TrimSpace(titleMarkerRegex.ReplaceAllString(title, ""))
}

// SectionTitle renders a human-readable section title for a bucket:
// "Season 1 Episode 3", "Season 1 Intro", "Outro", or "General" when both
// identifiers are empty.
func SectionTitle(season, ep string) string {
	if season == "" && ep == "" {
		return "General"
	}

	var parts []string
	if season != "" {
		if n, err := strconv.Atoi(season); err == nil {
			parts = append(parts, fmt.Sprintf("Season %d", n))
		} else {
			parts = append(parts, "Season "+season)
		}
	}

	if ep != "" {
		switch strings.ToUpper(ep) {
		case "IN":
			parts = append(parts, "Intro")
		case "OU":
			parts = append(parts, "Outro")
		default:
			if n, err := strconv.Atoi(ep); err == nil {
				parts = append(parts, fmt.Sprintf("Episode %d", n))
			} else {
				parts = append(parts, "Episode "+ep)
			}
		}
	}

	return strings.Join(parts, " ")
}

// SortRank returns an ordering tuple for bucket presentation: the General
// bucket first, then by season, with intro before numeric episodes and
// outro after them.
func (k Key) SortRank() (seasonRank, classRank, episodeRank int, tail string) {
	if k.Season == "" && k.Episode == "" {
		return 0, 0, 0, ""
	}

	seasonRank = 999999
	if k.Season != "" {
		if n, err := strconv.Atoi(k.Season); err == nil {
			seasonRank = n
		}
	}

	switch strings.ToUpper(k.Episode) {
	case "IN":
		return seasonRank, 1, 0, ""
	case "OU":
		return seasonRank, 999998, 0, ""
	}

	if n, err := strconv.Atoi(k.Episode); err == nil || k.Episode == "" {
		return seasonRank, 2, n, ""
	}

	return seasonRank, 3, 999999, strings.ToUpper(k.Episode)
}

// Less orders bucket keys for presentation.
func (k Key) Less(other Key) bool {
	s1, c1, e1, t1 := k.SortRank()
	s2, c2, e2, t2 := other.SortRank()

	if s1 != s2 {
		return s1 < s2
	}
	if c1 != c2 {
		return c1 < c2
	}
	if e1 != e2 {
		return e1 < e2
	}

	return t1 < t2
}

// Tag renders a compact marker like "S01E02", "S01", or "E05" for use in
// disambiguated fallback filenames. Empty when the key is the General bucket.
func (k Key) Tag() string {
	switch {
	case k.Season != "" && k.Episode != "":
		return "S" + k.Season + "E" + k.Episode
	case k.Season != "":
		return "S" + k.Season
	case k.Episode != "":
		return "E" + k.Episode
	default:
		return ""
	}
}

func isSpecial(ep string) bool {
	up := strings.ToUpper(ep)
	return up == "IN" || up == "OU"
}
