package meta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Raw keys per tagging scheme. ID3v2 uses frame ids, Vorbis comments are
// lower-cased by the tag library, MP4 uses free-form iTunes atoms.
var (
	originalDateKeys = []string{"TDOR", "TORY", "originaldate", "original_date", "originalyear"}
	releaseDateKeys  = []string{"TDRL", "releasedate", "release_date"}
	yearKeys         = []string{"TYER", "year"}
	recordingKeys    = []string{"TDRC", "date", "\xa9day"}
	mediaKeys        = []string{"TMED", "media", "----:com.apple.iTunes:MEDIA"}
)

// TagReader reads tags in-process.
type TagReader struct{}

// ReadTags implements Reader.
func (TagReader) ReadTags(_ context.Context, in Input) (Tags, error) {
	var rs io.ReadSeeker
	if in.Data != nil {
		rs = bytes.NewReader(in.Data)
	} else {
		f, err := os.Open(in.Path)
		if err != nil {
			return Tags{}, fmt.Errorf("open %s: %w", in.Path, err)
		}
		defer f.Close()
		rs = f
	}

	m, err := tag.ReadFrom(rs)
	if err != nil {
		return Tags{}, fmt.Errorf("read tags: %w", err)
	}
	return fromMetadata(m), nil
}

func fromMetadata(m tag.Metadata) Tags {
	raw := m.Raw()
	tags := Tags{
		Artist:        m.Artist(),
		AlbumArtist:   m.AlbumArtist(),
		Album:         m.Album(),
		Title:         m.Title(),
		OriginalDate:  rawText(raw, originalDateKeys...),
		ReleaseDate:   rawText(raw, releaseDateKeys...),
		Year:          rawText(raw, yearKeys...),
		RecordingDate: rawText(raw, recordingKeys...),
		MediaType:     rawText(raw, mediaKeys...),
	}
	if tags.Year == "" && m.Year() != 0 {
		tags.Year = strconv.Itoa(m.Year())
	}
	if track, _ := m.Track(); track > 0 {
		tags.Track = strconv.Itoa(track)
	}
	if disc, total := m.Disc(); disc > 0 {
		tags.DiscNumber = strconv.Itoa(disc)
		if total > 0 {
			tags.DiscTotal = strconv.Itoa(total)
		}
	}

	for key, value := range raw {
		tags.Items = append(tags.Items, rawItem(key, value))
	}
	sortItems(tags.Items)
	return tags
}

func rawText(raw map[string]interface{}, keys ...string) string {
	for _, want := range keys {
		for key, value := range raw {
			if !strings.EqualFold(key, want) {
				continue
			}
			if text := textValue(value); text != "" {
				return text
			}
		}
	}
	return ""
}

func textValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case *tag.Comm:
		return strings.TrimSpace(v.Text)
	default:
		return ""
	}
}

func rawItem(key string, value interface{}) Item {
	switch v := value.(type) {
	case string:
		return Item{Key: key, Value: v}
	case int:
		return Item{Key: key, Value: strconv.Itoa(v)}
	case *tag.Comm:
		if v.Description != "" {
			return Item{Key: key + ":" + v.Description, Value: v.Text}
		}
		return Item{Key: key, Value: v.Text}
	case *tag.Picture:
		return Item{Key: key, Binary: true, Size: len(v.Data)}
	case []byte:
		return Item{Key: key, Binary: true, Size: len(v)}
	default:
		return Item{Key: key, Value: fmt.Sprint(v)}
	}
}
