package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ivlev/uloha2doc/internal/config"
	"github.com/ivlev/uloha2doc/internal/engine"
	"github.com/ivlev/uloha2doc/internal/picker"
	"github.com/ivlev/uloha2doc/internal/system"
)

// set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

type flags struct {
	configPath string
	latest     bool

	dpi         int
	margin      float64
	offsetX     float64
	labelLength int
	format      string
	mode        string
	collision   string
	onError     string
	workers     int
	backend     string
	traceQR     bool
	stats       bool
	verbose     bool
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "uloha2doc [input.pdf]",
		Short: "Cut every \"Úloha <n>\" problem out of a PDF into one Word document",
		Long: `uloha2doc finds the "Úloha <n>" headers on every page of a PDF, saves each
problem as a PNG in <name>/uloha_images and collects the images into <name>.docx,
each followed by an "Author: " line to fill in.

Without an argument a file dialog opens in the current directory.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML file with settings (flags override it)")
	fl.BoolVar(&f.latest, "latest", false, "Use the newest PDF in the current directory instead of asking")
	fl.IntVar(&f.dpi, "dpi", def.DPI, "Render resolution of the cropped images")
	fl.Float64Var(&f.margin, "margin", def.Margin, "Points added above each header")
	fl.Float64Var(&f.offsetX, "offset-x", def.OffsetX, "Points trimmed from the left and right page edge")
	fl.IntVar(&f.labelLength, "label-length", def.LabelLength, "Characters of the header kept in image names")
	fl.StringVar(&f.format, "format", def.Format, "Output document: docx, pdf")
	fl.StringVar(&f.mode, "mode", def.Mode, "Existing document: replace, append (docx only)")
	fl.StringVar(&f.collision, "collision", def.Collision, "Equal image names: overwrite, page-suffix")
	fl.StringVar(&f.onError, "on-render-error", def.OnError, "Region that cannot be rendered: fail, skip")
	fl.IntVar(&f.workers, "workers", def.Workers, "Pages rendered in parallel")
	fl.StringVar(&f.backend, "backend", def.Backend, "Text extraction: fitz, tabula")
	fl.BoolVar(&f.traceQR, "trace-qr", def.TraceQR, "Print a QR code with the source page next to each caption")
	fl.BoolVar(&f.stats, "stats", def.ShowStats, "Print a performance report and append to benchmark.log")
	fl.BoolVarP(&f.verbose, "verbose", "v", def.Verbose, "Debug logging")
	return cmd
}

// loadConfig applies defaults, then the YAML file, then the flags set on the command line.
func loadConfig(fs *pflag.FlagSet, f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "dpi":
			cfg.DPI = f.dpi
		case "margin":
			cfg.Margin = f.margin
		case "offset-x":
			cfg.OffsetX = f.offsetX
		case "label-length":
			cfg.LabelLength = f.labelLength
		case "format":
			cfg.Format = f.format
		case "mode":
			cfg.Mode = f.mode
		case "collision":
			cfg.Collision = f.collision
		case "on-render-error":
			cfg.OnError = f.onError
		case "workers":
			cfg.Workers = f.workers
		case "backend":
			cfg.Backend = f.backend
		case "trace-qr":
			cfg.TraceQR = f.traceQR
		case "stats":
			cfg.ShowStats = f.stats
		case "verbose":
			cfg.Verbose = f.verbose
		}
	})
	cfg.BuildVersion = buildVersion
	return cfg, cfg.Validate()
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), f)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	var p picker.Picker = picker.Dialog{}
	switch {
	case len(args) == 1:
		p = picker.Fixed(args[0])
	case f.latest:
		p = picker.Latest{}
	}

	input, err := engine.ResolveInput(p, cwd)
	if errors.Is(err, engine.ErrCancelled) {
		fmt.Println("No PDF file selected. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("[*] Selected file: %s\n", input)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := config.DerivePaths(input, cfg.Format, system.CurrentUser())
	log.WithFields(logrus.Fields{
		"images":   paths.OutputDir,
		"document": paths.OutputDocPath,
		"author":   paths.AuthorName,
	}).Debug("output paths")

	project := engine.NewProject(cfg, paths, log)
	if _, err := project.Run(ctx); err != nil {
		return err
	}
	return nil
}
