package execute

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiovert/internal/encoding"
	"audiovert/internal/format"
	"audiovert/internal/logging"
	"audiovert/internal/plan"
	"audiovert/internal/report"
	"audiovert/internal/rules"
)

type fakeEncoder struct {
	jobs     []encoding.Job
	fail     map[string]bool
	onEncode func(encoding.Job)
}

func (f *fakeEncoder) Encode(_ context.Context, job encoding.Job) error {
	f.jobs = append(f.jobs, job)
	if f.onEncode != nil {
		f.onEncode(job)
	}
	if f.fail[filepath.Base(job.Output)] {
		return encoding.ErrEncoderFailed
	}
	return os.WriteFile(job.Output, []byte("encoded "+job.Format.String()), 0o644)
}

func (f *fakeEncoder) Command(job encoding.Job) []string {
	return append([]string{"ffmpeg"}, encoding.Args(job)...)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func build(t *testing.T, opts plan.Options) *plan.Plan {
	t.Helper()
	p, err := plan.New(opts, nil, logging.NewNop()).Plan(t.Context())
	require.NoError(t, err)
	require.Empty(t, p.Errors)
	return p
}

func run(t *testing.T, p *plan.Plan, opts Options, enc Encoder) (Summary, string) {
	t.Helper()
	if opts.Bitrates == (format.Bitrates{}) {
		opts.Bitrates = format.DefaultBitrates()
	}
	var buf bytes.Buffer
	summary, err := New(opts, enc, report.New(&buf, false), logging.NewNop()).Run(t.Context(), p)
	require.NoError(t, err)
	return summary, buf.String()
}

func TestConvertRenamesPartialAndIsStable(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	opts := plan.Options{Paths: []string{dir}}
	enc := &fakeEncoder{}

	summary, output := run(t, build(t, opts), Options{}, enc)
	assert.Equal(t, Summary{Planned: 1, Completed: 1}, summary)
	require.Len(t, enc.jobs, 1)
	assert.Equal(t, filepath.Join(dir, "a.flac"), enc.jobs[0].Input)
	assert.Equal(t, filepath.Join(dir, "a.mp3.part"), enc.jobs[0].Output)
	assert.Equal(t, format.MP3, enc.jobs[0].Format)
	assert.Equal(t, format.DefaultBitrateMP3, enc.jobs[0].Bitrate)
	assert.Contains(t, output, "Task #1/#1: converting flac to mp3")
	assert.Contains(t, output, "<ffmpeg> -hide_banner -loglevel error -i <from> -ab 320k")
	assert.Contains(t, output, "mv <to>.part <to>")

	assert.FileExists(t, filepath.Join(dir, "a.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "a.mp3.part"))

	again := build(t, opts)
	assert.Empty(t, again.Pending())
	summary, _ = run(t, again, Options{}, enc)
	assert.Len(t, enc.jobs, 1, "second run must not encode again")
	assert.Equal(t, 1, summary.Existing)
}

func TestEncoderFailureLeavesTaskIncomplete(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	write(t, filepath.Join(dir, "b.flac"), "flac")
	enc := &fakeEncoder{fail: map[string]bool{"a.mp3.part": true}}

	p := build(t, plan.Options{Paths: []string{dir}})
	summary, output := run(t, p, Options{}, enc)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Completed)
	assert.False(t, p.Tasks[0].Completed())
	assert.True(t, p.Tasks[1].Completed(), "later tasks still run")
	assert.Contains(t, output, encoding.ErrEncoderFailed.Error())
	assert.NoFileExists(t, filepath.Join(dir, "a.mp3"))
}

func TestStalePartialIsRemovedFirst(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	write(t, filepath.Join(dir, "a.mp3.part"), "stale")

	p := build(t, plan.Options{Paths: []string{dir}})
	_, output := run(t, p, Options{}, &fakeEncoder{})

	assert.Contains(t, output, "removing partial file")
	assert.Contains(t, output, "rm <to>.part")
	got, err := os.ReadFile(filepath.Join(dir, "a.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "encoded mp3", string(got))
	assert.True(t, p.Tasks[0].Completed())
}

func TestFailedPreRemovalSkipsMainAction(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	write(t, filepath.Join(dir, "a.mp3", "blocker"), "x")
	enc := &fakeEncoder{}

	p := build(t, plan.Options{Paths: []string{filepath.Join(dir, "a.flac")}, Force: true})
	summary, _ := run(t, p, Options{}, enc)

	assert.Empty(t, enc.jobs)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, p.Tasks[0].PreRemove, 1, "failed removal stays queued")
}

func TestForceReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.flac"), "flac")
	write(t, filepath.Join(dir, "a.mp3"), "old")

	p := build(t, plan.Options{Paths: []string{filepath.Join(dir, "a.flac")}, Force: true})
	_, output := run(t, p, Options{}, &fakeEncoder{})

	assert.Contains(t, output, "removing existing destination")
	got, err := os.ReadFile(filepath.Join(dir, "a.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "encoded mp3", string(got))
}

func TestTransfers(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "sub", "a.mp3"), "mp3 bytes")
	out := filepath.Join(t.TempDir(), "out")

	p := build(t, plan.Options{Paths: []string{dir}, ToDir: out})
	_, output := run(t, p, Options{}, nil)
	assert.Contains(t, output, "making link dir")
	assert.Contains(t, output, "ln <from> <to>")

	srcInfo, err := os.Stat(filepath.Join(dir, "sub", "a.mp3"))
	require.NoError(t, err)
	dstInfo, err := os.Stat(filepath.Join(out, "sub", "a.mp3"))
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo))

	moveOut := filepath.Join(t.TempDir(), "moved")
	p = build(t, plan.Options{Paths: []string{dir}, ToDir: moveOut, Move: true})
	run(t, p, Options{}, nil)
	assert.NoFileExists(t, filepath.Join(dir, "sub", "a.mp3"))
	assert.FileExists(t, filepath.Join(moveOut, "sub", "a.mp3"))
}

func TestArchiveEntries(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "music.zip"))
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, body := range map[string]string{"01.mp3": "lossy entry", "02.wav": "lossless entry"} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	out := t.TempDir()
	enc := &fakeEncoder{}
	p := build(t, plan.Options{Paths: []string{dir}, ToDir: out})
	summary, output := run(t, p, Options{}, enc)

	assert.Equal(t, 2, summary.Completed)
	got, err := os.ReadFile(filepath.Join(out, "music", "01.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "lossy entry", string(got))

	require.Len(t, enc.jobs, 1)
	assert.Equal(t, "lossless entry", string(enc.jobs[0].Data))
	assert.Equal(t, encoding.PipeInput, enc.jobs[0].InputArg())
	assert.Contains(t, output, "-i pipe:")
	assert.FileExists(t, filepath.Join(out, "music", "02.mp3"))
}

func TestDryRunChangesNothing(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "album", "a.flac"), "flac")
	write(t, filepath.Join(dir, "album", "a.mp3.part"), "stale")
	out := filepath.Join(t.TempDir(), "out")
	trash := filepath.Join(t.TempDir(), "trash")
	enc := &fakeEncoder{}

	p := build(t, plan.Options{Paths: []string{dir}, ToDir: out})
	summary, output := run(t, p, Options{DryRun: true, TrashSource: true, TrashDir: trash}, enc)

	assert.Empty(t, enc.jobs)
	assert.Equal(t, 1, summary.Completed)
	assert.True(t, p.Tasks[0].Completed())
	assert.Contains(t, output, "Creating trash directory")
	assert.Contains(t, output, "Trashing source file")
	assert.NoDirExists(t, out)
	assert.NoDirExists(t, trash)
	assert.FileExists(t, filepath.Join(dir, "album", "a.flac"))
}

func TestTrashLeavesEmptyDirectoriesAfterSuccess(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "artist", "album", "a.flac"), "flac")
	out := t.TempDir()
	trash := filepath.Join(t.TempDir(), "trash")

	p := build(t, plan.Options{Paths: []string{root}, ToDir: out})
	summary, output := run(t, p, Options{TrashSource: true, TrashDir: trash}, &fakeEncoder{})

	assert.Equal(t, 1, summary.Trashed)
	assert.Equal(t, 0, summary.RemovedDirs)
	assert.FileExists(t, filepath.Join(trash, "a.flac"))
	assert.DirExists(t, filepath.Join(root, "artist", "album"))
	assert.NotContains(t, output, "removing empty directory")
}

func TestFailedTrashCascadesEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "artist", "album", "a.flac")
	write(t, src, "flac")
	out := t.TempDir()
	trash := filepath.Join(t.TempDir(), "trash")

	// The source disappears after encoding, so the trash move fails.
	enc := &fakeEncoder{onEncode: func(encoding.Job) { _ = os.Remove(src) }}
	p := build(t, plan.Options{Paths: []string{root}, ToDir: out})
	summary, output := run(t, p, Options{TrashSource: true, TrashDir: trash}, enc)

	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 0, summary.Trashed)
	assert.Equal(t, 2, summary.RemovedDirs)
	assert.Contains(t, output, "removing empty directory")
	assert.NoDirExists(t, filepath.Join(root, "artist"))
	assert.DirExists(t, root, "the scan root is never removed")
}

func TestFailedTrashKeepsNonEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "album", "a.flac"), "flac")
	// A regular file where the trash directory should be makes the move fail.
	trash := filepath.Join(t.TempDir(), "trash")
	write(t, trash, "not a directory")

	p := build(t, plan.Options{Paths: []string{root}, ToDir: t.TempDir()})
	summary, _ := run(t, p, Options{TrashSource: true, TrashDir: trash}, &fakeEncoder{})

	assert.Equal(t, 0, summary.Trashed)
	assert.Equal(t, 0, summary.RemovedDirs)
	assert.FileExists(t, filepath.Join(root, "album", "a.flac"))
}

func TestTrashNameCollision(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.mp3"), "mp3")
	write(t, filepath.Join(root, "keep.txt"), "x")
	trash := t.TempDir()
	write(t, filepath.Join(trash, "a.mp3"), "older")

	p := build(t, plan.Options{Paths: []string{root}, ToDir: t.TempDir()})
	summary, _ := run(t, p, Options{TrashSource: true, TrashDir: trash}, nil)

	assert.Equal(t, 1, summary.Trashed)
	assert.FileExists(t, filepath.Join(trash, "a (1).mp3"))
	assert.Equal(t, 0, summary.RemovedDirs)
}

func TestTrashRequiresEveryTaskOfASource(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.flac"), "flac")
	trash := t.TempDir()

	p := build(t, plan.Options{
		Paths:      []string{root},
		ToDir:      t.TempDir(),
		Conditions: []rules.Condition{mustCondition(t, "flac=mp3"), mustCondition(t, "flac=ogg")},
	})
	require.Len(t, p.Tasks, 2)

	enc := &fakeEncoder{fail: map[string]bool{"a.ogg.part": true}}
	summary, _ := run(t, p, Options{TrashSource: true, TrashDir: trash}, enc)

	assert.Equal(t, 0, summary.Trashed)
	assert.FileExists(t, filepath.Join(root, "a.flac"))
}

func TestTrashSkipsMovedSources(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.mp3"), "mp3")
	trash := filepath.Join(t.TempDir(), "trash")

	p := build(t, plan.Options{Paths: []string{root}, ToDir: t.TempDir(), Move: true})
	summary, output := run(t, p, Options{TrashSource: true, TrashDir: trash}, nil)

	assert.Equal(t, 0, summary.Trashed)
	assert.NotContains(t, output, "Trashing")
	assert.NoDirExists(t, trash)
}

func symlinkedSource(t *testing.T, name string) (root, link, real string) {
	t.Helper()
	real = filepath.Join(t.TempDir(), "real"+filepath.Ext(name))
	write(t, real, "real bytes")
	root = t.TempDir()
	link = filepath.Join(root, name)
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	return root, link, real
}

func TestMoveRelocatesSymlinkNotTarget(t *testing.T) {
	root, link, real := symlinkedSource(t, "song.mp3")
	out := filepath.Join(t.TempDir(), "out")

	p := build(t, plan.Options{Paths: []string{root}, ToDir: out, Move: true})
	summary, _ := run(t, p, Options{}, nil)

	assert.Equal(t, 1, summary.Completed)
	assert.FileExists(t, real)
	_, err := os.Lstat(link)
	assert.True(t, os.IsNotExist(err))

	info, err := os.Lstat(filepath.Join(out, "song.mp3"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestTrashRelocatesSymlinkNotTarget(t *testing.T) {
	root, link, real := symlinkedSource(t, "song.flac")
	trash := filepath.Join(t.TempDir(), "trash")

	enc := &fakeEncoder{}
	p := build(t, plan.Options{Paths: []string{root}, ToDir: t.TempDir()})
	summary, _ := run(t, p, Options{TrashSource: true, TrashDir: trash}, enc)

	require.Len(t, enc.jobs, 1)
	assert.Equal(t, link, enc.jobs[0].Input)
	assert.Equal(t, 1, summary.Trashed)
	assert.FileExists(t, real)
	_, err := os.Lstat(link)
	assert.True(t, os.IsNotExist(err))

	info, err := os.Lstat(filepath.Join(trash, "song.flac"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}
