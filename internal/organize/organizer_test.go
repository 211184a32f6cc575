package organize_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/classify"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/fileutil"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/logging"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/organize"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/services"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/testsupport"
)

// stubConverter mimics the HEIF converter: it refuses to overwrite an existing
// target and writes a marker file otherwise. Failures can be injected by base
// name.
type stubConverter struct {
	failNames map[string]bool
	calls     []string
	qualities []int
}

func (s *stubConverter) Convert(_ context.Context, srcPath, dstPath string, quality int) error {
	s.calls = append(s.calls, filepath.Base(srcPath))
	s.qualities = append(s.qualities, quality)
	if s.failNames[filepath.Base(srcPath)] {
		return services.Wrap(services.ErrCodec, "converting", "decode", "", errors.New("injected decode failure"))
	}
	if _, err := os.Lstat(dstPath); err == nil {
		return os.ErrExist
	}
	return os.WriteFile(dstPath, []byte("jpeg from "+filepath.Base(srcPath)), 0o644)
}

func newTestOrganizer(t *testing.T, conv *stubConverter) *organize.Organizer {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return organize.NewWithConverter(cfg, logging.NewNop(), conv)
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}

func snapshotTree(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(paths)
	return paths
}

func TestRunOrganizesMixedDirectory(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root, "a.heic", "b.mov", "c.mp4")
	preexisting := []byte("original jpeg, do not touch")
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), preexisting)
	if err := os.Mkdir(filepath.Join(root, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	conv := &stubConverter{}
	report, err := newTestOrganizer(t, conv).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// a.jpg already existed, so the conversion is skipped and the bytes stay.
	got, err := os.ReadFile(filepath.Join(root, "a.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(preexisting) {
		t.Fatalf("pre-existing jpg modified: %q", got)
	}

	mustExist(t, filepath.Join(root, "heic", "a.heic"))
	mustExist(t, filepath.Join(root, "mov", "b.mov"))
	mustExist(t, filepath.Join(root, "mp4", "c.mp4"))
	mustNotExist(t, filepath.Join(root, "a.heic"))
	mustNotExist(t, filepath.Join(root, "b.mov"))
	mustNotExist(t, filepath.Join(root, "c.mp4"))

	// The empty subfolder is left untouched: no category folders inside.
	mustNotExist(t, filepath.Join(root, "notes", "heic"))
	mustNotExist(t, filepath.Join(root, "notes", "mov"))
	mustNotExist(t, filepath.Join(root, "notes", "mp4"))

	if len(report.Directories) != 1 {
		t.Fatalf("directories = %d, want 1", len(report.Directories))
	}
	dir := report.Directories[0]
	want := classify.Counts{HEIC: 1, MOV: 1, MP4: 1}
	if dir.Expected != want || dir.Actual != want {
		t.Fatalf("expected/actual = %+v / %+v, want %+v", dir.Expected, dir.Actual, want)
	}
	if dir.Mismatch {
		t.Fatal("unexpected verification mismatch")
	}
	if dir.ConversionSkips != 1 || dir.Converted != 0 {
		t.Fatalf("conversion tallies = %+v", dir)
	}
	if dir.Moved != 3 {
		t.Fatalf("moved = %d, want 3", dir.Moved)
	}
	if report.RunID == "" {
		t.Fatal("missing run id")
	}
}

func TestRunConvertsUppercaseHeicAtRequestedQuality(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root, "x.HEIC")

	conv := &stubConverter{}
	report, err := newTestOrganizer(t, conv).Run(context.Background(), root, 80)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	mustExist(t, filepath.Join(root, "x.jpg"))
	mustExist(t, filepath.Join(root, "heic", "x.HEIC"))
	mustNotExist(t, filepath.Join(root, "x.HEIC"))

	if len(conv.qualities) != 1 || conv.qualities[0] != 80 {
		t.Fatalf("qualities = %v, want [80]", conv.qualities)
	}
	if report.Directories[0].Converted != 1 {
		t.Fatalf("converted = %d, want 1", report.Directories[0].Converted)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root,
		"a.heic", "b.mov", "c.mp4",
		"trip/d.heif", "trip/e.mpg",
	)

	org := newTestOrganizer(t, &stubConverter{})
	if _, err := org.Run(context.Background(), root, 95); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	before := snapshotTree(t, root)

	second, err := org.Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	after := snapshotTree(t, root)

	if len(second.Directories) != 0 {
		t.Fatalf("second run visited %d dirs with work, want 0", len(second.Directories))
	}
	if len(before) != len(after) {
		t.Fatalf("tree changed between runs: %v vs %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("tree changed between runs: %v vs %v", before, after)
		}
	}
}

func TestRunProcessesSubdirectoriesBeforeParent(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root,
		"p.mov",
		"nested/q.mov",
		"nested/deeper/r.mp4",
	)

	report, err := newTestOrganizer(t, &stubConverter{}).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	mustExist(t, filepath.Join(root, "mov", "p.mov"))
	mustExist(t, filepath.Join(root, "nested", "mov", "q.mov"))
	mustExist(t, filepath.Join(root, "nested", "deeper", "mp4", "r.mp4"))

	// Post-order: deepest directory completes first, root last.
	if len(report.Directories) != 3 {
		t.Fatalf("directories = %d, want 3", len(report.Directories))
	}
	order := []string{
		filepath.Join(root, "nested", "deeper"),
		filepath.Join(root, "nested"),
		root,
	}
	for i, want := range order {
		if report.Directories[i].Path != want {
			t.Fatalf("completion order[%d] = %s, want %s", i, report.Directories[i].Path, want)
		}
	}
}

func TestRunNeverEntersReservedFolders(t *testing.T) {
	root := t.TempDir()
	// Directories carrying reserved names in any case must not be recursed
	// into or processed, even when they contain loose target files.
	testsupport.MakeTree(t, root,
		"heic/stale.heic",
		"Mov/loose.mov",
		"MP4/clip.mp4",
	)

	report, err := newTestOrganizer(t, &stubConverter{}).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	mustExist(t, filepath.Join(root, "heic", "stale.heic"))
	mustExist(t, filepath.Join(root, "Mov", "loose.mov"))
	mustExist(t, filepath.Join(root, "MP4", "clip.mp4"))
	mustNotExist(t, filepath.Join(root, "Mov", "mov"))
	mustNotExist(t, filepath.Join(root, "MP4", "mp4"))

	if len(report.Directories) != 0 {
		t.Fatalf("reserved folders were processed: %+v", report.Directories)
	}
}

func TestRunMoveCollisionLeavesSourceInPlace(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root, "a.heic")
	archived := []byte("already archived copy")
	testsupport.WriteFile(t, filepath.Join(root, "heic", "a.heic"), archived)

	report, err := newTestOrganizer(t, &stubConverter{}).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The source stays, the archived copy is byte-for-byte untouched.
	mustExist(t, filepath.Join(root, "a.heic"))
	got, err := os.ReadFile(filepath.Join(root, "heic", "a.heic"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(archived) {
		t.Fatalf("archived copy modified: %q", got)
	}

	dir := report.Directories[0]
	if dir.MoveSkips != 1 || dir.Moved != 0 {
		t.Fatalf("move tallies = %+v", dir)
	}
}

func TestRunConversionFailureStillArchivesOriginal(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root, "bad.heic", "good.heic")

	conv := &stubConverter{failNames: map[string]bool{"bad.heic": true}}
	report, err := newTestOrganizer(t, conv).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The failed conversion leaves no jpg but the original is still archived.
	mustNotExist(t, filepath.Join(root, "bad.jpg"))
	mustExist(t, filepath.Join(root, "heic", "bad.heic"))
	mustExist(t, filepath.Join(root, "good.jpg"))
	mustExist(t, filepath.Join(root, "heic", "good.heic"))

	dir := report.Directories[0]
	if dir.ConversionFailures != 1 || dir.Converted != 1 {
		t.Fatalf("conversion tallies = %+v", dir)
	}
	if dir.Moved != 2 || dir.Mismatch {
		t.Fatalf("move tallies = %+v", dir)
	}
}

func TestRunFlagsVerificationMismatchOnMoveFailure(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root, "a.heic", "b.mov")

	restore := fileutil.SetRenameForTests(func(oldpath, newpath string) error {
		if filepath.Base(filepath.Dir(newpath)) == "mov" {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errors.New("injected failure")}
		}
		return os.Rename(oldpath, newpath)
	})
	defer restore()

	report, err := newTestOrganizer(t, &stubConverter{}).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The mov failure must not block the heic work in the same directory.
	mustExist(t, filepath.Join(root, "heic", "a.heic"))
	mustExist(t, filepath.Join(root, "b.mov"))

	dir := report.Directories[0]
	if !dir.Mismatch {
		t.Fatal("expected verification mismatch")
	}
	if dir.MoveFailures != 1 || dir.Moved != 1 {
		t.Fatalf("move tallies = %+v", dir)
	}
	if dir.Expected.MOV != 1 || dir.Actual.MOV != 0 {
		t.Fatalf("mov expected/actual = %d/%d", dir.Expected.MOV, dir.Actual.MOV)
	}
	if dir.Expected.HEIC != 1 || dir.Actual.HEIC != 1 {
		t.Fatalf("heic expected/actual = %d/%d", dir.Expected.HEIC, dir.Actual.HEIC)
	}
}

func TestRunPermissionErrorSkipsSubtreeOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	root := t.TempDir()
	testsupport.MakeTree(t, root, "top.mov", "locked/hidden.mov", "open/ok.mp4")
	if err := os.Chmod(filepath.Join(root, "locked"), 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "locked"), 0o755) })

	report, err := newTestOrganizer(t, &stubConverter{}).Run(context.Background(), root, 95)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Siblings and the parent's own files are still processed.
	mustExist(t, filepath.Join(root, "open", "mp4", "ok.mp4"))
	mustExist(t, filepath.Join(root, "mov", "top.mov"))

	for _, d := range report.Directories {
		if d.Path == filepath.Join(root, "locked") {
			t.Fatal("locked directory should not have been processed")
		}
	}
}

func TestRunRejectsMissingRoot(t *testing.T) {
	org := newTestOrganizer(t, &stubConverter{})
	_, err := org.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), 95)
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestRunRejectsFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	testsupport.WriteFile(t, file, []byte("x"))

	org := newTestOrganizer(t, &stubConverter{})
	_, err := org.Run(context.Background(), file, 95)
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestRunRejectsOutOfRangeQuality(t *testing.T) {
	org := newTestOrganizer(t, &stubConverter{})
	_, err := org.Run(context.Background(), t.TempDir(), 101)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	root := t.TempDir()
	testsupport.MakeTree(t, root, "a.mov")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestOrganizer(t, &stubConverter{}).Run(ctx, root, 95)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("report should be returned even when cancelled")
	}
	mustExist(t, filepath.Join(root, "a.mov"))
}
