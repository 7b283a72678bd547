package format

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported reports an extension or name that is not a known format.
var ErrUnsupported = errors.New("unsupported format")

// Format identifies an audio encoding.
type Format uint8

const (
	AAC Format = iota
	FLAC
	MP3
	OGG
	WAV

	count
)

// All lists every format in declaration order.
var All = []Format{AAC, FLAC, MP3, OGG, WAV}

const (
	DefaultBitrateAAC = 192
	DefaultBitrateMP3 = 320
	DefaultBitrateOGG = 192
)

type attributes struct {
	ext       string
	container string
	lossless  bool
	bitrate   int
}

var table = [count]attributes{
	AAC:  {ext: "aac", container: "adts", bitrate: DefaultBitrateAAC},
	FLAC: {ext: "flac", container: "flac", lossless: true},
	MP3:  {ext: "mp3", container: "mp3", bitrate: DefaultBitrateMP3},
	OGG:  {ext: "ogg", container: "ogg", bitrate: DefaultBitrateOGG},
	WAV:  {ext: "wav", container: "wav", lossless: true},
}

// Valid reports whether f is one of the declared formats.
func (f Format) Valid() bool {
	return f < count
}

// Ext returns the file extension without a leading dot.
func (f Format) Ext() string {
	if !f.Valid() {
		return ""
	}
	return table[f].ext
}

// Container returns the encoder's muxer name for the format (ffmpeg -f).
func (f Format) Container() string {
	if !f.Valid() {
		return ""
	}
	return table[f].container
}

// Lossless reports whether the format preserves the full signal.
func (f Format) Lossless() bool {
	return f.Valid() && table[f].lossless
}

// DefaultBitrate returns the bitrate in kbps used when none is configured.
// Lossless formats have no bitrate.
func (f Format) DefaultBitrate() (int, bool) {
	if !f.Valid() || table[f].bitrate == 0 {
		return 0, false
	}
	return table[f].bitrate, true
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("format(%d)", uint8(f))
	}
	return table[f].ext
}

// FromExt maps a file extension (with or without the dot, any case) to a format.
func FromExt(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range All {
		if table[f].ext == ext {
			return f, true
		}
	}
	return 0, false
}

// Parse maps a format name to a Format.
func Parse(value string) (Format, error) {
	f, ok := FromExt(strings.TrimSpace(value))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupported, value)
	}
	return f, nil
}
