package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeEncoder()
	c.normalizeConvert()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpeg = strings.TrimSpace(c.Encoder.FFmpeg)
	if c.Encoder.FFmpeg == "" {
		c.Encoder.FFmpeg = defaultFFmpeg
	}
	c.Encoder.FFprobe = strings.TrimSpace(c.Encoder.FFprobe)
	if c.Encoder.FFprobe == "" {
		c.Encoder.FFprobe = defaultFFprobe
	}
	c.Encoder.PartExt = strings.TrimPrefix(strings.TrimSpace(c.Encoder.PartExt), ".")
	if c.Encoder.PartExt == "" {
		c.Encoder.PartExt = defaultPartExt
	}
}

func (c *Config) normalizeConvert() {
	c.Convert.MetaBackend = strings.ToLower(strings.TrimSpace(c.Convert.MetaBackend))
	if c.Convert.MetaBackend == "" {
		c.Convert.MetaBackend = defaultMetaBackend
	}
	c.Convert.Conversions = trimAll(c.Convert.Conversions)
	c.Convert.Bitrates = trimAll(c.Convert.Bitrates)
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TrashDir) == "" {
		if c.Paths.TrashDir, err = DefaultTrashDir(); err != nil {
			return fmt.Errorf("paths.trash_dir: %w", err)
		}
		return nil
	}
	if c.Paths.TrashDir, err = expandPath(strings.TrimSpace(c.Paths.TrashDir)); err != nil {
		return fmt.Errorf("paths.trash_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Output.Color = strings.ToLower(strings.TrimSpace(c.Output.Color))
	if c.Output.Color == "" {
		c.Output.Color = defaultColor
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
