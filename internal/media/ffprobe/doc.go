// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties, including per-stream tags
//   - Format: container-level metadata and tags
//
// Primary entry points:
//   - Inspect: executes ffprobe against a file and returns the parsed Result
//   - InspectData: pipes an in-memory file to ffprobe's standard input
//
// Tag lookups are case-insensitive because containers disagree on key case
// (Vorbis comments are upper case, ID3 frames are mapped to lower case).
package ffprobe
