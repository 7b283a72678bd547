package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	SampleRate string            `json:"sample_rate"`
	Channels   int               `json:"channels"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

var commandContext = exec.CommandContext

func args(input string) []string {
	return []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", input}
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	cmd := commandContext(ctx, binaryName(binary), args(path)...) //nolint:gosec
	return run(cmd)
}

// InspectData pipes data to ffprobe's standard input.
func InspectData(ctx context.Context, binary string, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, errors.New("ffprobe inspect: empty input")
	}
	cmd := commandContext(ctx, binaryName(binary), args("pipe:0")...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(data)
	return run(cmd)
}

func binaryName(binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "ffprobe"
	}
	return binary
}

func run(cmd *exec.Cmd) (Result, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return Parse(output)
}

// Parse decodes raw ffprobe JSON.
func Parse(output []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Tag returns the first non-empty value for key, checking container tags
// before the tags of the first audio stream.
func (r Result) Tag(key string) (string, bool) {
	if value, ok := lookup(r.Format.Tags, key); ok {
		return value, true
	}
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		return lookup(stream.Tags, key)
	}
	return "", false
}

// Tags returns container tags merged with the first audio stream's tags,
// container values winning.
func (r Result) Tags() map[string]string {
	out := make(map[string]string, len(r.Format.Tags))
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		for k, v := range stream.Tags {
			out[strings.ToLower(k)] = v
		}
		break
	}
	for k, v := range r.Format.Tags {
		out[strings.ToLower(k)] = v
	}
	return out
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

func lookup(tags map[string]string, key string) (string, bool) {
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}
