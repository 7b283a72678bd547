package meta

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"audiovert/internal/textutil"
)

// Parts are the fields used to build a metadata-derived path.
type Parts struct {
	Year   int
	Artist string
	Album  string
	Track  int
	Title  string
	// MediaType replaces the "Disc" label when set, e.g. "CD".
	MediaType string
	Disc      int
	DiscTotal int
}

// IncompleteError lists every missing field of a failed Parse.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncomplete, strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}

// Messages returns one "missing <field>" line per missing field.
func (e *IncompleteError) Messages() []string {
	out := make([]string, 0, len(e.Missing)+1)
	for _, field := range e.Missing {
		out = append(out, "missing "+field)
	}
	return append(out, ErrIncomplete.Error())
}

// Parse resolves naming parts from tags. The year comes from the first
// parsable of original release date, release date, year and recording
// date. The artist prefers the album artist over the track artist.
func Parse(tags Tags) (Parts, error) {
	var (
		parts   Parts
		missing []string
		ok      bool
	)

	parts.Year, ok = firstYear(tags.OriginalDate, tags.ReleaseDate, tags.Year, tags.RecordingDate)
	if !ok {
		missing = append(missing, "year")
	}
	if parts.Album = strings.TrimSpace(tags.Album); parts.Album == "" {
		missing = append(missing, "album")
	}
	parts.Artist = strings.TrimSpace(tags.AlbumArtist)
	if parts.Artist == "" {
		parts.Artist = strings.TrimSpace(tags.Artist)
	}
	if parts.Artist == "" {
		missing = append(missing, "artist")
	}
	if parts.Title = strings.TrimSpace(tags.Title); parts.Title == "" {
		missing = append(missing, "title")
	}
	if parts.Track, ok = parseNumber(tags.Track); !ok {
		missing = append(missing, "track")
	}
	if len(missing) > 0 {
		return Parts{}, &IncompleteError{Missing: missing}
	}

	parts.MediaType = strings.TrimSpace(tags.MediaType)
	disc, discOK := parseNumber(tags.DiscNumber)
	total, totalOK := parseNumber(tags.DiscTotal)
	if !totalOK {
		total, totalOK = parseTotal(tags.DiscNumber)
	}
	if discOK && totalOK {
		parts.Disc, parts.DiscTotal = disc, total
	}
	return parts, nil
}

// ParseYear accepts a full date, a year-month, a timestamp or a bare year.
func ParseYear(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if date, _, found := strings.Cut(value, "T"); found {
		value = date
	}
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Year(), true
		}
	}
	year, err := strconv.ParseInt(value, 10, 16)
	if err != nil {
		return 0, false
	}
	return int(year), true
}

func firstYear(values ...string) (int, bool) {
	for _, v := range values {
		if year, ok := ParseYear(v); ok {
			return year, true
		}
	}
	return 0, false
}

// parseNumber reads "3" or the leading part of "3/10".
func parseNumber(value string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(value), "/")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func parseTotal(value string) (int, bool) {
	_, tail, found := strings.Cut(value, "/")
	if !found {
		return 0, false
	}
	return parseNumber(tail)
}

// Segments returns the sanitized directory and file name segments; ext is
// appended to the last one.
func (p Parts) Segments(ext string) []string {
	name := fmt.Sprintf("%s - %s - %02d - %s", p.Artist, p.Album, p.Track, p.Title)
	if p.DiscTotal > 1 {
		label := p.MediaType
		if label == "" {
			label = "Disc"
		}
		name = fmt.Sprintf("%s %02d %s", label, p.Disc, name)
	}
	return []string{
		textutil.SanitizeSegment(p.Artist),
		textutil.SanitizeSegment(fmt.Sprintf("%s - %s (%d)", p.Artist, p.Album, p.Year)),
		textutil.SanitizeSegment(name) + "." + ext,
	}
}

// Path joins the metadata-derived layout under base.
func (p Parts) Path(base, ext string) string {
	return filepath.Join(append([]string{base}, p.Segments(ext)...)...)
}
