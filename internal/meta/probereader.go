package meta

import (
	"context"
	"errors"

	"audiovert/internal/media/ffprobe"
)

// ErrNoAudio reports a probed input without any audio stream.
var ErrNoAudio = errors.New("no audio stream")

// ProbeReader reads container tags through ffprobe.
type ProbeReader struct {
	Binary string
}

// ReadTags implements Reader.
func (r ProbeReader) ReadTags(ctx context.Context, in Input) (Tags, error) {
	var (
		result ffprobe.Result
		err    error
	)
	if in.Data != nil {
		result, err = ffprobe.InspectData(ctx, r.Binary, in.Data)
	} else {
		result, err = ffprobe.Inspect(ctx, r.Binary, in.Path)
	}
	if err != nil {
		return Tags{}, err
	}
	if result.AudioStreamCount() == 0 {
		return Tags{}, ErrNoAudio
	}
	return fromProbe(result), nil
}

func fromProbe(result ffprobe.Result) Tags {
	get := func(keys ...string) string {
		for _, key := range keys {
			if v, ok := result.Tag(key); ok {
				return v
			}
		}
		return ""
	}

	tags := Tags{
		Artist:        get("artist"),
		AlbumArtist:   get("album_artist", "albumartist"),
		Album:         get("album"),
		Title:         get("title"),
		OriginalDate:  get("originaldate", "original_date", "TDOR", "TORY", "originalyear"),
		ReleaseDate:   get("releasedate", "release_date", "TDRL"),
		Year:          get("year", "TYER"),
		RecordingDate: get("date", "TDRC"),
		Track:         get("track", "tracknumber"),
		DiscNumber:    get("disc", "discnumber"),
		DiscTotal:     get("disctotal", "totaldiscs"),
		MediaType:     get("media", "TMED"),
	}
	for key, value := range result.Tags() {
		tags.Items = append(tags.Items, Item{Key: key, Value: value})
	}
	sortItems(tags.Items)
	return tags
}

// NewReader returns the Reader for a configured backend name.
func NewReader(backend, ffprobeBinary string) Reader {
	if backend == "ffprobe" {
		return ProbeReader{Binary: ffprobeBinary}
	}
	return TagReader{}
}
