package config

import (
	"fmt"
	"strings"

	"audiovert/internal/archive"
	"audiovert/internal/format"
	"audiovert/internal/rules"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validateEncoder() error {
	if strings.ContainsAny(c.Encoder.PartExt, `/\`) {
		return fmt.Errorf("encoder.part_ext must not contain path separators: %q", c.Encoder.PartExt)
	}
	if _, ok := format.FromExt(c.Encoder.PartExt); ok {
		return fmt.Errorf("encoder.part_ext must not be an audio extension: %q", c.Encoder.PartExt)
	}
	if _, ok := archive.KindFromExt(c.Encoder.PartExt); ok {
		return fmt.Errorf("encoder.part_ext must not be an archive extension: %q", c.Encoder.PartExt)
	}
	return nil
}

func (c *Config) validateConvert() error {
	switch c.Convert.MetaBackend {
	case MetaBackendTag, MetaBackendFFprobe:
	default:
		return fmt.Errorf("convert.meta_backend must be %q or %q, got %q", MetaBackendTag, MetaBackendFFprobe, c.Convert.MetaBackend)
	}
	if _, err := c.Conditions(); err != nil {
		return err
	}
	if _, err := c.BitrateRules(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	return nil
}

// Conditions parses convert.conversions.
func (c *Config) Conditions() ([]rules.Condition, error) {
	out := make([]rules.Condition, 0, len(c.Convert.Conversions))
	for _, value := range c.Convert.Conversions {
		cond, err := rules.ParseCondition(value)
		if err != nil {
			return nil, fmt.Errorf("convert.conversions: %w", err)
		}
		out = append(out, cond)
	}
	return out, nil
}

// BitrateRules parses convert.bitrates.
func (c *Config) BitrateRules() ([]rules.BitrateRule, error) {
	out := make([]rules.BitrateRule, 0, len(c.Convert.Bitrates))
	for _, value := range c.Convert.Bitrates {
		rule, err := rules.ParseBitrateRule(value)
		if err != nil {
			return nil, fmt.Errorf("convert.bitrates: %w", err)
		}
		out = append(out, rule)
	}
	return out, nil
}
