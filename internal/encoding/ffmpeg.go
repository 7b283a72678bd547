package encoding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"audiovert/internal/format"
)

// DefaultBinary is the encoder used when none is configured.
const DefaultBinary = "ffmpeg"

// PipeInput is the input argument used for buffers written to stdin.
const PipeInput = "pipe:"

// ErrEncoderFailed reports a non-zero encoder exit.
var ErrEncoderFailed = errors.New("encoder failed")

// Job is one encode.
type Job struct {
	// Input is a file path; ignored when Data is set.
	Input  string
	Data   []byte
	Output string
	Format format.Format
	// Bitrate in kbps; 0 leaves the encoder default.
	Bitrate int
}

// InputArg returns the value passed to -i.
func (j Job) InputArg() string {
	if j.Data != nil {
		return PipeInput
	}
	return j.Input
}

// Args returns the encoder arguments for job, excluding the program.
func Args(job Job) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-i", job.InputArg()}
	if job.Bitrate > 0 {
		args = append(args, "-ab", strconv.Itoa(job.Bitrate)+"k")
	}
	args = append(args, "-map_metadata", "0", "-id3v2_version", "3")
	args = append(args, "-f", job.Format.Container(), job.Output)
	return args
}

// FFmpeg runs encodes through a configured command.
type FFmpeg struct {
	argv []string
}

// New splits command into program and leading arguments.
func New(command string) (*FFmpeg, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultBinary
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse encoder command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("parse encoder command %q: empty", command)
	}
	return &FFmpeg{argv: argv}, nil
}

// Program returns the executable that is started.
func (f *FFmpeg) Program() string {
	return f.argv[0]
}

// Command returns the full argument vector for job, program first.
func (f *FFmpeg) Command(job Job) []string {
	out := make([]string, 0, len(f.argv)+16)
	out = append(out, f.argv...)
	return append(out, Args(job)...)
}

// Encode runs job and waits for the encoder to exit.
func (f *FFmpeg) Encode(ctx context.Context, job Job) error {
	argv := f.Command(job)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if job.Data != nil {
		cmd.Stdin = bytes.NewReader(job.Data)
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s: %s", ErrEncoderFailed, exitErr, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	return nil
}
