package format

// Bitrates holds the kbps used per target format. A zero entry means no
// bitrate argument is passed to the encoder.
type Bitrates struct {
	values [count]int
}

// DefaultBitrates returns the table seeded with each format's default.
func DefaultBitrates() Bitrates {
	var b Bitrates
	for _, f := range All {
		if kbps, ok := f.DefaultBitrate(); ok {
			b.values[f] = kbps
		}
	}
	return b
}

// Get returns the configured bitrate for f.
func (b Bitrates) Get(f Format) (int, bool) {
	if !f.Valid() || b.values[f] <= 0 {
		return 0, false
	}
	return b.values[f], true
}

// Set overrides the bitrate for f.
func (b *Bitrates) Set(f Format, kbps int) {
	if f.Valid() {
		b.values[f] = kbps
	}
}
