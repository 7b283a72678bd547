package meta

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrIncomplete reports that required tag fields are missing.
var ErrIncomplete = errors.New("incomplete tag information")

// Input names the media to read tags from. Data takes precedence over Path
// and is used for archive entries.
type Input struct {
	Path string
	Data []byte
	// Ext is the lower-case extension without the dot, used as a format hint.
	Ext string
}

// Reader extracts tags from one input.
type Reader interface {
	ReadTags(ctx context.Context, in Input) (Tags, error)
}

// Item is one raw tag entry, kept for dumps.
type Item struct {
	Key string
	// Value holds text values. Binary values leave it empty and set Size.
	Value  string
	Binary bool
	Size   int
}

func (i Item) String() string {
	if i.Binary {
		return fmt.Sprintf("binary: %d bytes", i.Size)
	}
	return fmt.Sprintf("text: %q", i.Value)
}

// Tags holds the raw text fields relevant to naming. Numeric fields keep
// their textual form so unparsable values are reported as missing.
type Tags struct {
	Artist      string
	AlbumArtist string
	Album       string
	Title       string

	OriginalDate  string
	ReleaseDate   string
	Year          string
	RecordingDate string

	Track      string
	DiscNumber string
	DiscTotal  string
	MediaType  string

	Items []Item
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Key) < strings.ToLower(items[j].Key)
	})
}
