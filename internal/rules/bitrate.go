package rules

import (
	"fmt"
	"strconv"
	"strings"

	"audiovert/internal/format"
)

// BitrateRule sets the bitrate for every format matching From.
// A zero Kbps restores the format's default.
type BitrateRule struct {
	From From
	Kbps int
}

func (r BitrateRule) String() string {
	return fmt.Sprintf("%s=%d", r.From, r.Kbps)
}

// ParseBitrateRule parses "<from>=<kbps>".
func ParseBitrateRule(value string) (BitrateRule, error) {
	from, kbps, ok := strings.Cut(strings.TrimSpace(value), "=")
	if !ok {
		return BitrateRule{}, fmt.Errorf("bitrate %q: %w", value, ErrMissingSeparator)
	}
	source, err := ParseFrom(from)
	if err != nil {
		return BitrateRule{}, fmt.Errorf("bitrate %q: invalid from condition: %w", value, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(kbps))
	if err != nil || n < 0 {
		return BitrateRule{}, fmt.Errorf("bitrate %q: invalid bitrate", value)
	}
	return BitrateRule{From: source, Kbps: n}, nil
}

// ApplyBitrates folds the rules over the default table. When force is set,
// every format touched by a rule is returned in the forced re-encode set.
func ApplyBitrates(rules []BitrateRule, force bool) (format.Bitrates, format.Set, error) {
	bitrates := format.DefaultBitrates()
	var forced format.Set

	for _, rule := range rules {
		applied := false
		for _, f := range format.All {
			if !rule.From.Matches(f) {
				continue
			}
			def, ok := f.DefaultBitrate()
			if !ok {
				continue
			}
			applied = true
			if force {
				forced = forced.With(f)
			}
			if rule.Kbps == 0 {
				bitrates.Set(f, def)
			} else {
				bitrates.Set(f, rule.Kbps)
			}
		}
		if !applied {
			return bitrates, forced, fmt.Errorf("cannot set custom bitrate for format: %s", rule.From)
		}
	}
	return bitrates, forced, nil
}
