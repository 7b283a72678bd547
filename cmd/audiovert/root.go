package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"audiovert/internal/config"
	"audiovert/internal/execute"
	"audiovert/internal/logging"
	"audiovert/internal/plan"
	"audiovert/internal/report"
	"audiovert/internal/rules"
	"audiovert/internal/workflow"
)

type rootOptions struct {
	configPath string

	conversions   conditionsFlag
	bitrates      bitratesFlag
	forceBitrates bool

	to            string
	meta          bool
	metaDump      bool
	metaDumpError bool
	force         bool
	move          bool
	trashSource   bool
	trash         string
	dryRun        bool
	keepGoing     bool
	verbose       bool
	partExt       string
	ffmpegBin     string

	logLevel string
	color    string
	summary  bool
	noLock   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "audiovert [paths...]",
		Short: "Batch convert audio collections",
		Long: `audiovert scans files and directories (zip, rar and 7z archives included)
and converts or transfers every audio file according to ordered conversion
rules. By default lossless files become mp3 and lossy files are linked as-is.

Re-running is safe: finished destinations are skipped and leftover partial
files from interrupted conversions are removed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Configuration file path")
	flags.VarP(&opts.conversions, "conversion", "c", "Conversion rule like flac=mp3, lossless=ogg, lossy=same or same (repeatable, default lossless=mp3,lossy=same)")
	flags.StringVarP(&opts.to, "to", "o", "", "Output base directory for converted files")
	flags.BoolVar(&opts.meta, "meta", false, "Use tags to build the output path: Artist/Artist - Album (Year)/Artist - Album - NN - Title.ext")
	flags.BoolVar(&opts.metaDump, "meta-dump", false, "Dump the tags read for each file processed with --meta")
	flags.BoolVar(&opts.metaDumpError, "meta-dump-error", false, "Dump the tags of files whose tags are incomplete")
	flags.BoolVarP(&opts.force, "force", "f", false, "Overwrite existing destination files")
	flags.BoolVar(&opts.move, "move", false, "Move files instead of hard-linking them when no conversion is needed")
	flags.BoolVarP(&opts.trashSource, "trash-source", "r", false, "Move source files to the trash after successful conversion")
	flags.StringVar(&opts.trash, "trash", "", "Trash directory (default ~/trash)")
	flags.Var(&opts.bitrates, "bitrates", "Bitrate in kbps per format like mp3=256 or lossy=192; 0 selects the default (repeatable)")
	flags.BoolVar(&opts.forceBitrates, "force-bitrates", false, "Re-encode the formats named in --bitrates even when no conversion is needed")
	flags.BoolVarP(&opts.dryRun, "dry-run", "D", false, "Show what would be done without changing anything (implies --verbose)")
	flags.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "Execute tasks even when planning reported errors")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show matching rules, skipped destinations and full command lines")
	flags.StringVar(&opts.partExt, "part-ext", "", "Extension of partial conversion files (default part)")
	flags.StringVar(&opts.ffmpegBin, "ffmpeg-bin", "", "Encoder command (default ffmpeg)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")
	flags.StringVar(&opts.color, "color", "", "Colorize output: auto, always or never")
	flags.BoolVar(&opts.summary, "summary", false, "Print a summary table after the run")
	flags.BoolVar(&opts.noLock, "no-lock", false, "Do not lock the output directory against concurrent runs")

	rootCmd.AddCommand(newConfigCommand())
	return rootCmd
}

func runConvert(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, _, _, err := config.Load(strings.TrimSpace(opts.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := opts.applyTo(cfg); err != nil {
		return err
	}

	conditions := opts.conversions.values
	if len(conditions) == 0 {
		if conditions, err = cfg.Conditions(); err != nil {
			return err
		}
	}
	bitrateRules := opts.bitrates.values
	if len(bitrateRules) == 0 {
		if bitrateRules, err = cfg.BitrateRules(); err != nil {
			return err
		}
	}
	bitrates, forced, err := rules.ApplyBitrates(bitrateRules, cfg.Convert.ForceBitrates)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	color, err := report.ResolveColor(cfg.Output.Color, stdout)
	if err != nil {
		return err
	}
	out := report.New(stdout, color)

	logger, closeLog, err := logging.NewFromConfig(cfg, uuid.NewString())
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	verbose := opts.verbose || opts.dryRun
	runner := workflow.New(workflow.Options{
		Plan: plan.Options{
			Paths:         args,
			Conditions:    conditions,
			ToDir:         opts.to,
			Meta:          opts.meta || opts.metaDump || opts.metaDumpError,
			MetaDump:      opts.metaDump,
			MetaDumpError: opts.metaDumpError,
			Force:         opts.force,
			Move:          opts.move,
			Forced:        forced,
			PartExt:       cfg.Encoder.PartExt,
		},
		Execute: execute.Options{
			DryRun:      opts.dryRun,
			Verbose:     verbose,
			TrashSource: opts.trashSource,
			TrashDir:    cfg.Paths.TrashDir,
			PartExt:     cfg.Encoder.PartExt,
			Bitrates:    bitrates,
		},
		FFmpeg:      cfg.Encoder.FFmpeg,
		FFprobe:     cfg.Encoder.FFprobe,
		MetaBackend: cfg.Convert.MetaBackend,
		KeepGoing:   opts.keepGoing,
		Lock:        cfg.Paths.Lock,
	}, out, logger)

	result, err := runner.Run(cmd.Context())
	if errors.Is(err, workflow.ErrAborted) {
		return fmt.Errorf("%w, use --keep-going to ignore", err)
	}
	if err != nil {
		return err
	}

	if cfg.Output.Summary || verbose {
		fmt.Fprintln(stdout, renderSummary(result.Summary))
	}
	if result.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", result.Summary.Failed, result.Summary.Planned)
	}
	return nil
}

// applyTo folds command-line overrides into cfg and revalidates it.
func (o *rootOptions) applyTo(cfg *config.Config) error {
	if o.partExt != "" {
		cfg.Encoder.PartExt = strings.TrimPrefix(o.partExt, ".")
	}
	if o.ffmpegBin != "" {
		cfg.Encoder.FFmpeg = o.ffmpegBin
	}
	if o.trash != "" {
		expanded, err := config.ExpandPath(o.trash)
		if err != nil {
			return fmt.Errorf("resolve trash path: %w", err)
		}
		cfg.Paths.TrashDir = expanded
	}
	if o.forceBitrates {
		cfg.Convert.ForceBitrates = true
	}
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	if o.color != "" {
		cfg.Output.Color = strings.ToLower(o.color)
	}
	if o.summary {
		cfg.Output.Summary = true
	}
	if o.noLock {
		cfg.Paths.Lock = false
	}
	return cfg.Validate()
}
