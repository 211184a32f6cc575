package organize

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/classify"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/codec"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/config"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/fileutil"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/logging"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/services"
)

// Organizer walks a directory tree, converts HEIC images to JPEG, archives the
// originals plus MOV and MP4 files into per-directory subfolders, and verifies
// post-move counts against the pre-move tallies.
type Organizer struct {
	cfg       *config.Config
	logger    *slog.Logger
	converter codec.Converter
}

// New constructs an organizer with the default HEIF converter.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return NewWithConverter(cfg, logger, codec.NewHEIF(logger))
}

// NewWithConverter allows injecting the converter (used in tests).
func NewWithConverter(cfg *config.Config, logger *slog.Logger, converter codec.Converter) *Organizer {
	return &Organizer{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "organizer"),
		converter: converter,
	}
}

// Run organizes the tree rooted at root. The root must exist and be a
// directory; anything else is a usage error and nothing is touched. A
// per-root advisory lock guards against concurrent runs. The returned report
// is valid even when the walk was cancelled early.
func (o *Organizer) Run(ctx context.Context, root string, quality int) (*Report, error) {
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "organizing", "resolve root", "", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrUsage, "organizing", "resolve root",
				"path does not exist: "+abs, nil)
		}
		return nil, services.Wrap(services.ErrUsage, "organizing", "resolve root", "", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrUsage, "organizing", "resolve root",
			"path is not a directory: "+abs, nil)
	}
	if quality < config.MinQuality || quality > config.MaxQuality {
		return nil, services.Wrap(services.ErrValidation, "organizing", "check quality", "quality out of range", nil)
	}

	lock, err := acquireRunLock(o.cfg.Paths.LogDir, abs)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	report := &Report{
		RunID:     runID,
		Root:      abs,
		Quality:   quality,
		StartedAt: time.Now(),
	}
	logger.Info("starting organize run",
		logging.String("root", abs),
		logging.Int("quality", quality),
	)

	o.processDirectory(ctx, abs, quality, report)

	report.FinishedAt = time.Now()
	totals := report.Totals()
	logger.Info("organize run finished",
		logging.Int("directories", len(report.Directories)),
		logging.Int("converted", totals.Converted),
		logging.Int("moved", totals.Moved),
		logging.Int("mismatches", totals.Mismatches),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, ctx.Err()
}

// processDirectory runs one visit of the per-directory state machine:
// reserved-name guard, snapshot, depth-first recursion into subdirectories,
// classification, per-file convert/move, and the verification recount.
// Every visit is independent; failures degrade to warnings scoped to the
// visit and never propagate to siblings or ancestors.
func (o *Organizer) processDirectory(ctx context.Context, dir string, quality int, report *Report) {
	if ctx.Err() != nil {
		return
	}

	dir = filepath.Clean(dir)
	info, err := os.Lstat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if classify.IsReservedFolder(filepath.Base(dir)) {
		return
	}

	ctx = services.WithDirectory(ctx, dir)
	logger := logging.WithContext(ctx, o.logger)

	// One snapshot per visit. All decisions below work off this listing, so
	// files that appear mid-visit are ignored until a future run.
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("directory listing failed, skipping subtree", logging.Error(err))
		return
	}

	// Children first. os.ReadDir sorts by name, which fixes the recursion
	// order across platforms.
	for _, entry := range entries {
		if entry.IsDir() {
			o.processDirectory(ctx, filepath.Join(dir, entry.Name()), quality, report)
		}
	}
	if ctx.Err() != nil {
		return
	}

	files, expected := classify.Classify(entries)
	if expected.Total() == 0 {
		return
	}

	logger.Info("organizing directory",
		logging.Int("heic", expected.HEIC),
		logging.Int("mov", expected.MOV),
		logging.Int("mp4", expected.MP4),
	)

	dirReport := DirectoryReport{Path: dir, Expected: expected}
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		o.processFile(ctx, logger, dir, file, quality, &dirReport)
	}

	o.verify(logger, dir, &dirReport)
	report.Directories = append(report.Directories, dirReport)
}

// processFile converts (HEIC only) and archives a single classified file.
// Failures are logged and tallied but never abort the rest of the directory;
// a failed conversion still archives the original.
func (o *Organizer) processFile(ctx context.Context, logger *slog.Logger, dir string, file classify.File, quality int, dirReport *DirectoryReport) {
	path := filepath.Join(dir, file.Name)

	if file.Category == classify.HEIC {
		jpgPath := filepath.Join(dir, file.Base()+".jpg")
		switch err := o.converter.Convert(ctx, path, jpgPath, quality); {
		case err == nil:
			dirReport.Converted++
			logger.Info("converted",
				logging.String("file", file.Name),
				logging.String("target", filepath.Base(jpgPath)),
			)
		case errors.Is(err, os.ErrExist):
			dirReport.ConversionSkips++
			logger.Info("conversion skipped, jpeg already exists", logging.String("file", file.Name))
		case errors.Is(err, context.Canceled):
			return
		default:
			dirReport.ConversionFailures++
			logger.Error("conversion failed", logging.String("file", file.Name), logging.Error(err))
		}
	}

	folder := filepath.Join(dir, file.Category.Folder())
	outcome, err := fileutil.MoveToFolder(path, folder)
	switch {
	case err != nil:
		dirReport.MoveFailures++
		logger.Error("move failed",
			logging.String("file", file.Name),
			logging.String(logging.FieldCategory, file.Category.String()),
			logging.Error(services.Wrap(services.ErrMove, "organizing", "move file", "", err)),
		)
	case outcome == fileutil.MoveSkipped:
		dirReport.MoveSkips++
		logger.Info("move skipped, destination already exists",
			logging.String("file", file.Name),
			logging.String(logging.FieldCategory, file.Category.String()),
		)
	default:
		dirReport.Moved++
		logger.Info("moved",
			logging.String("file", file.Name),
			logging.String(logging.FieldCategory, file.Category.String()),
		)
	}
}

// verify recounts target files inside the category subfolders and compares the
// tallies against the pre-move expectation. A mismatch is advisory: it is
// logged per category and flagged on the report, nothing is retried or rolled
// back.
func (o *Organizer) verify(logger *slog.Logger, dir string, dirReport *DirectoryReport) {
	dirReport.Actual = countArchived(dir)
	if dirReport.Actual.Equal(dirReport.Expected) {
		logger.Info("verification passed", logging.Int("files", dirReport.Expected.Total()))
		return
	}
	dirReport.Mismatch = true
	for _, cat := range classify.Categories {
		expected := dirReport.Expected.Get(cat)
		actual := dirReport.Actual.Get(cat)
		if expected == actual {
			continue
		}
		logger.Warn("verification mismatch",
			logging.String(logging.FieldCategory, cat.String()),
			logging.Int("expected", expected),
			logging.Int("actual", actual),
		)
	}
}

// countArchived tallies files by category inside the directory's category
// subfolders, using the same extension sets as classification. A missing
// subfolder counts as zero.
func countArchived(dir string) classify.Counts {
	var counts classify.Counts
	for _, cat := range classify.Categories {
		folder := filepath.Join(dir, cat.Folder())
		entries, err := os.ReadDir(folder)
		if err != nil {
			continue
		}
		n := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if classify.Categorize(entry.Name()) == cat {
				n++
			}
		}
		switch cat {
		case classify.HEIC:
			counts.HEIC = n
		case classify.MOV:
			counts.MOV = n
		case classify.MP4:
			counts.MP4 = n
		}
	}
	return counts
}
