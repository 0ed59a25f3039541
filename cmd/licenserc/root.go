package main

import (
	"context"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/licenserc/pkg/config"
	"github.com/walteh/licenserc/pkg/gitlog"
	"github.com/walteh/licenserc/pkg/license"
	"github.com/walteh/licenserc/pkg/log"
	"github.com/walteh/licenserc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
	flagCfg    = config.Default()
)

// newRootCmd builds the licenserc command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "licenserc [flags] [files...]",
		Short: "Insert, update or remove license headers in source files",
		Long: `licenserc keeps a license header comment block at the top of source files.
It understands many comment styles, maintains copyright year ranges (optionally
from git history), and can flag headers that almost match the project license.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: run,
	}
	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds all flags to the root command.
func addRootFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.licenserc.yaml or .licenserc.hcl)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	flags.StringVar(&flagCfg.LicenseFilepath, "license-filepath", flagCfg.LicenseFilepath, "path to the plain-text license body")
	flags.StringVar(&flagCfg.LicenseBase64, "license-base64", "", "inline base64-encoded license body")
	flags.StringVar(&flagCfg.CommentStyle, "comment-style", flagCfg.CommentStyle, "single prefix or <start>|<prefix>|<end> triplet, e.g. '/*| *| */'")
	flags.BoolVar(&flagCfg.NoSpaceInPrefix, "no-space-in-comment-prefix", false, "do not add a space between the comment prefix and the license text")
	flags.BoolVar(&flagCfg.NoExtraEOL, "no-extra-eol", false, "do not add an extra end of line after the license comment")
	flags.IntVar(&flagCfg.TopLines, "detect-license-in-top-lines", flagCfg.TopLines, "number of leading lines scanned for an existing header")
	flags.BoolVar(&flagCfg.FuzzyMatchGeneratesTodo, "fuzzy-match-generates-todo", false, "annotate near-matching headers with a TODO marker")
	flags.IntVar(&flagCfg.FuzzyRatioCutoff, "fuzzy-ratio-cut-off", flagCfg.FuzzyRatioCutoff, "minimum similarity ratio for a fuzzy match")
	flags.StringVar(&flagCfg.FuzzyTodoComment, "fuzzy-match-todo-comment", flagCfg.FuzzyTodoComment, "marker comment inserted above near-matching headers")
	flags.StringVar(&flagCfg.FuzzyTodoInstructions, "fuzzy-match-todo-instructions", flagCfg.FuzzyTodoInstructions, "instruction line inserted below the marker comment")
	flags.IntVar(&flagCfg.FuzzyExtraLines, "fuzzy-match-extra-lines-to-check", flagCfg.FuzzyExtraLines, "extra lines added to each fuzzy candidate window")
	flags.StringVar(&flagCfg.SkipComment, "skip-license-insertion-comment", flagCfg.SkipComment, "marker that exempts a file from processing")
	flags.StringVar(&flagCfg.InsertAfterRegex, "insert-license-after-regex", "", "insert the header after the first line matching this pattern (e.g. '^<\\?php$')")
	flags.BoolVar(&flagCfg.RemoveHeader, "remove-header", false, "remove the header instead of inserting it")
	flags.BoolVar(&flagCfg.UseCurrentYear, "use-current-year", false, "use the current year in inserted and updated licenses, implies --allow-past-years")
	flags.BoolVar(&flagCfg.AllowPastYears, "allow-past-years", false, "match headers whose years differ from the template")
	flags.BoolVar(&flagCfg.DynamicYears, "dynamic-years", false, "derive header years from git history, implies --allow-past-years")
}

// loadConfig merges the optional config file with the flag surface; any flag
// the user set explicitly wins over the file.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		for _, candidate := range []string{".licenserc.yaml", ".licenserc.hcl"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		cfg := flagCfg
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	override := map[string]func(){
		"license-filepath":                 func() { cfg.LicenseFilepath = flagCfg.LicenseFilepath },
		"license-base64":                   func() { cfg.LicenseBase64 = flagCfg.LicenseBase64 },
		"comment-style":                    func() { cfg.CommentStyle = flagCfg.CommentStyle },
		"no-space-in-comment-prefix":       func() { cfg.NoSpaceInPrefix = flagCfg.NoSpaceInPrefix },
		"no-extra-eol":                     func() { cfg.NoExtraEOL = flagCfg.NoExtraEOL },
		"detect-license-in-top-lines":      func() { cfg.TopLines = flagCfg.TopLines },
		"fuzzy-match-generates-todo":       func() { cfg.FuzzyMatchGeneratesTodo = flagCfg.FuzzyMatchGeneratesTodo },
		"fuzzy-ratio-cut-off":              func() { cfg.FuzzyRatioCutoff = flagCfg.FuzzyRatioCutoff },
		"fuzzy-match-todo-comment":         func() { cfg.FuzzyTodoComment = flagCfg.FuzzyTodoComment },
		"fuzzy-match-todo-instructions":    func() { cfg.FuzzyTodoInstructions = flagCfg.FuzzyTodoInstructions },
		"fuzzy-match-extra-lines-to-check": func() { cfg.FuzzyExtraLines = flagCfg.FuzzyExtraLines },
		"skip-license-insertion-comment":   func() { cfg.SkipComment = flagCfg.SkipComment },
		"insert-license-after-regex":       func() { cfg.InsertAfterRegex = flagCfg.InsertAfterRegex },
		"remove-header":                    func() { cfg.RemoveHeader = flagCfg.RemoveHeader },
		"use-current-year":                 func() { cfg.UseCurrentYear = flagCfg.UseCurrentYear },
		"allow-past-years":                 func() { cfg.AllowPastYears = flagCfg.AllowPastYears },
		"dynamic-years":                    func() { cfg.DynamicYears = flagCfg.DynamicYears },
	}
	for name, apply := range override {
		if flags.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes one batch over the positional file arguments.
func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Invalid configuration")
		pterm.Error.Println(err)
		return err
	}

	style, err := license.ParseStyle(cfg.CommentStyle)
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Invalid comment style")
		pterm.Error.Println(err)
		return err
	}

	// a broken template is fatal before any file is touched
	tmpl, err := license.Load(license.Options{
		Filepath:        cfg.LicenseFilepath,
		Base64:          cfg.LicenseBase64,
		Style:           style,
		NoSpaceInPrefix: cfg.NoSpaceInPrefix,
		NoExtraEOL:      cfg.NoExtraEOL,
		UseCurrentYear:  cfg.UseCurrentYear,
		CurrentYear:     time.Now().Year(),
	})
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Unusable license template")
		pterm.Error.Println(err)
		return err
	}

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	consoleLogger := log.New(os.Stdout, level)

	processor, err := operation.New(operation.Options{
		Config:   cfg,
		Template: tmpl,
		Logger:   consoleLogger,
		History:  gitlog.Provider{},
	})
	if err != nil {
		return err
	}

	result, err := processor.Run(ctx, args)
	if err != nil {
		pterm.Error.Println(err)
		return err
	}

	logger.Debug().
		Strs("changed", result.Changed).
		Strs("flagged", result.Flagged).
		Bool("update_failed", result.UpdateFailed).
		Msg("run complete")

	summarize(result)

	if result.Failed() {
		return errors.Errorf("%d changed, %d flagged", len(result.Changed), len(result.Flagged))
	}
	return nil
}

// summarize prints the end-of-run status.
func summarize(result *operation.Result) {
	if len(result.Changed) > 0 {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "🔄"}).Printf("Modified %d file(s)\n", len(result.Changed))
	}
	if len(result.Flagged) > 0 {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Printf("Flagged %d file(s) with inconsistent licenses\n", len(result.Flagged))
	}
	if result.UpdateFailed {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("Some year ranges could not be updated")
	}
	if !result.Failed() {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println("All files are up to date")
	}
}

// setupLogging configures zerolog before command execution.
func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
}
