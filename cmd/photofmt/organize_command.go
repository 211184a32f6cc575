package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/config"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/logging"
	"github.com/lorrislin/Photo-Dir-Formatter/internal/organize"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var qualityFlag int

	cmd := &cobra.Command{
		Use:   "organize <directory> [quality]",
		Short: "Convert HEIC images and sort media into heic/, mov/, and mp4/ subfolders",
		Long: `Recursively walks the directory, converts HEIC/HEIF images to JPEG, and
archives the original HEIC, MOV, and MP4/MPG files into per-directory
subfolders. Existing files are never overwritten, and file counts are
verified per directory after the moves.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			quality := cfg.Organize.Quality
			if cmd.Flags().Changed("quality") {
				quality = vetQuality(strconv.Itoa(qualityFlag), cfg.Organize.Quality, logger)
			}
			if len(args) == 2 {
				// The positional form mirrors the classic invocation and wins
				// over the flag.
				quality = vetQuality(args[1], cfg.Organize.Quality, logger)
			}

			report, err := organize.New(cfg, logger).Run(cmd.Context(), args[0], quality)
			if err != nil {
				return err
			}

			pretty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
			renderSummary(cmd.OutOrStdout(), report, pretty)
			return nil
		},
	}

	cmd.Flags().IntVar(&qualityFlag, "quality", 0, "JPEG quality (1-100) for HEIC conversion")

	return cmd
}

// vetQuality parses a user-supplied quality value. Anything non-numeric or
// outside 1-100 logs a warning and falls back to the configured default; it
// never aborts the run.
func vetQuality(raw string, fallback int, logger *slog.Logger) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logger.Warn("invalid quality argument, using default",
			logging.String("argument", raw),
			logging.Int("default", fallback),
		)
		return fallback
	}
	if value < config.MinQuality || value > config.MaxQuality {
		logger.Warn("quality out of range, using default",
			logging.Int("argument", value),
			logging.Int("default", fallback),
		)
		return fallback
	}
	return value
}
