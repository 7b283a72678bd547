package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiovert/internal/deps"
	"audiovert/internal/encoding"
	"audiovert/internal/execute"
	"audiovert/internal/format"
	"audiovert/internal/logging"
	"audiovert/internal/meta"
	"audiovert/internal/plan"
	"audiovert/internal/report"
	"audiovert/internal/runlock"
)

type fakeEncoder struct {
	jobs []encoding.Job
}

func (f *fakeEncoder) Encode(_ context.Context, job encoding.Job) error {
	f.jobs = append(f.jobs, job)
	return os.WriteFile(job.Output, []byte("encoded"), 0o644)
}

func (f *fakeEncoder) Command(job encoding.Job) []string {
	return append([]string{"ffmpeg"}, encoding.Args(job)...)
}

type failingReader struct{}

func (failingReader) ReadTags(context.Context, meta.Input) (meta.Tags, error) {
	return meta.Tags{}, errors.New("no tags here")
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func baseOptions(dir string) Options {
	return Options{
		Plan:    plan.Options{Paths: []string{dir}, ToDir: filepath.Join(dir, "out")},
		Execute: execute.Options{Bitrates: format.DefaultBitrates()},
		LockDir: dir,
	}
}

func runWith(t *testing.T, opts Options, options ...Option) (Result, string, error) {
	t.Helper()
	var buf bytes.Buffer
	result, err := New(opts, report.New(&buf, false), logging.NewNop(), options...).Run(t.Context())
	return result, buf.String(), err
}

func TestRunConvertsAndTransfers(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "in", "a.flac"), "flac")
	write(t, filepath.Join(dir, "in", "b.mp3"), "mp3")
	write(t, filepath.Join(dir, "in", "notes.txt"), "txt")
	opts := baseOptions(dir)
	opts.Plan.Paths = []string{filepath.Join(dir, "in")}
	opts.Execute.Verbose = true
	enc := &fakeEncoder{}

	result, output, err := runWith(t, opts, WithEncoder(enc))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.Planned)
	assert.Equal(t, 2, result.Summary.Completed)
	require.Len(t, enc.jobs, 1)

	assert.FileExists(t, filepath.Join(dir, "out", "a.mp3"))
	assert.FileExists(t, filepath.Join(dir, "out", "b.mp3"))
	assert.Contains(t, output, "Unsupported extension: txt")
	assert.Contains(t, output, "Found matching conversions: flac -> mp3")
	assert.Contains(t, output, "Found matching conversions: mp3 -> mp3")
}

func TestRunAbortsOnPlanningErrors(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	opts := baseOptions(dir)
	opts.Plan.Meta = true
	enc := &fakeEncoder{}

	result, output, err := runWith(t, opts, WithEncoder(enc), WithReader(failingReader{}))
	require.ErrorIs(t, err, ErrAborted)
	require.NotNil(t, result.Plan)
	assert.Len(t, result.Plan.Errors, 1)
	assert.Empty(t, enc.jobs)
	assert.Contains(t, output, "Error:")
	assert.Contains(t, output, "no tags here")
}

func TestRunKeepGoingExecutesRemainingTasks(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "in", "a.flac"), "flac")
	opts := baseOptions(dir)
	opts.Plan.Paths = []string{filepath.Join(dir, "in"), filepath.Join(dir, "missing")}
	opts.KeepGoing = true
	enc := &fakeEncoder{}

	result, output, err := runWith(t, opts, WithEncoder(enc))
	require.NoError(t, err)
	assert.Len(t, result.Plan.Errors, 1)
	assert.Equal(t, 1, result.Summary.Completed)
	assert.Contains(t, output, "Error:")
	assert.Contains(t, output, "Task #1/#1: converting flac to mp3")
}

func TestRunFailsWhenEncoderMissing(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	opts := baseOptions(dir)
	opts.FFmpeg = "definitely-not-an-encoder --flag"

	var requested []deps.Requirement
	check := func(reqs []deps.Requirement) []deps.Status {
		requested = reqs
		return deps.CheckBinaries(reqs)
	}
	result, _, err := runWith(t, opts, WithDependencyCheck(check))
	require.ErrorIs(t, err, deps.ErrMissing)
	require.Len(t, requested, 1)
	assert.Equal(t, "definitely-not-an-encoder", requested[0].Command)
	assert.Zero(t, result.Summary.Completed)
	assert.NoFileExists(t, filepath.Join(dir, "out", "a.mp3"))
}

func TestRunDryRunSkipsEncoderCheck(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	opts := baseOptions(dir)
	opts.FFmpeg = "definitely-not-an-encoder"
	opts.Execute.DryRun = true
	opts.Lock = true

	called := false
	check := func(reqs []deps.Requirement) []deps.Status {
		called = true
		return nil
	}
	result, output, err := runWith(t, opts, WithDependencyCheck(check))
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 1, result.Summary.Completed)
	assert.Contains(t, output, "Task #1/#1: converting flac to mp3")
	assert.NoFileExists(t, filepath.Join(dir, "out", "a.mp3"))
}

func TestRunChecksProbeBeforePlanning(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	opts := baseOptions(dir)
	opts.Plan.Meta = true
	opts.MetaBackend = "ffprobe"
	opts.FFprobe = "definitely-not-ffprobe"
	opts.Execute.DryRun = true

	var requested []deps.Requirement
	check := func(reqs []deps.Requirement) []deps.Status {
		requested = append(requested, reqs...)
		return deps.CheckBinaries(reqs)
	}
	result, output, err := runWith(t, opts, WithEncoder(&fakeEncoder{}), WithDependencyCheck(check))
	require.ErrorIs(t, err, deps.ErrMissing)
	require.Len(t, requested, 1)
	assert.Equal(t, "FFprobe", requested[0].Name)
	assert.Equal(t, "definitely-not-ffprobe", requested[0].Command)
	assert.Nil(t, result.Plan)
	assert.NotContains(t, output, "Error:")
}

func TestRunSkipsProbeCheckForTagBackend(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.mp3"), "mp3")
	opts := baseOptions(dir)
	opts.Plan.Meta = true
	opts.MetaBackend = "tag"
	opts.FFprobe = "definitely-not-ffprobe"
	opts.KeepGoing = true

	called := false
	check := func(reqs []deps.Requirement) []deps.Status {
		called = true
		return deps.CheckBinaries(reqs)
	}
	result, _, err := runWith(t, opts, WithEncoder(&fakeEncoder{}), WithDependencyCheck(check))
	require.NoError(t, err)
	assert.False(t, called)
	require.NotNil(t, result.Plan)
}

func TestRunRefusesHeldLock(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	opts := baseOptions(dir)
	opts.Lock = true

	held := runlock.New(dir, opts.Plan.ToDir)
	require.NoError(t, held.Acquire())
	t.Cleanup(func() { _ = held.Release() })

	_, _, err := runWith(t, opts, WithEncoder(&fakeEncoder{}))
	require.ErrorIs(t, err, runlock.ErrHeld)
}

func TestRunPrintsExistingInVerboseMode(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	write(t, filepath.Join(dir, "out", "a.mp3"), "old")
	opts := baseOptions(dir)
	opts.Execute.Verbose = true
	enc := &fakeEncoder{}

	result, output, err := runWith(t, opts, WithEncoder(enc))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Existing)
	assert.Empty(t, enc.jobs)
	assert.Contains(t, output, "already exists (--force to remove):")
}
