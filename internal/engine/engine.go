// Package engine runs one conversion: PDF in, region images and a document out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/uloha2doc/internal/config"
	"github.com/ivlev/uloha2doc/internal/document"
	"github.com/ivlev/uloha2doc/internal/extract"
	"github.com/ivlev/uloha2doc/internal/picker"
	"github.com/ivlev/uloha2doc/internal/source"
	"github.com/ivlev/uloha2doc/internal/system"
)

// ErrCancelled means the user chose no input file.
var ErrCancelled = errors.New("cancelled by user")

// ManifestVersion is written into every manifest.
const ManifestVersion = "1.0"

// BenchmarkLog collects one line per run when stats are enabled.
const BenchmarkLog = "benchmark.log"

// ResolveInput asks p for the PDF to convert, starting in dir.
func ResolveInput(p picker.Picker, dir string) (string, error) {
	path, err := p.PickPDF(dir)
	if errors.Is(err, picker.ErrCancelled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// SourceOpener opens the input with the named text backend.
type SourceOpener func(path, backend string) (source.Source, error)

type Project struct {
	Config config.Config
	Paths  config.RunPaths
	Log    logrus.FieldLogger
	Out    io.Writer
	Open   SourceOpener
}

// Result describes a finished run.
type Result struct {
	Images       []extract.Image
	Skipped      []*extract.RenderError
	DocumentPath string
	ManifestPath string
	RenderTime   time.Duration
	AssembleTime time.Duration
	TotalTime    time.Duration
}

func NewProject(cfg config.Config, paths config.RunPaths, log logrus.FieldLogger) *Project {
	return &Project{
		Config: cfg,
		Paths:  paths,
		Log:    log,
		Out:    os.Stdout,
		Open:   source.Open,
	}
}

func (p *Project) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	res := &Result{DocumentPath: p.Paths.OutputDocPath}

	if err := os.MkdirAll(p.Paths.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", p.Paths.OutputDir, err)
	}
	if err := p.prepareDocument(); err != nil {
		return nil, err
	}

	src, err := p.Open(p.Paths.InputPath, p.Config.Backend)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	fmt.Fprintln(p.Out, "--- [ULOHA2DOC] ---")
	fmt.Fprintf(p.Out, "[*] Source: %s | Pages: %d\n", p.Paths.InputPath, src.PageCount())
	fmt.Fprintf(p.Out, "[*] DPI: %d | Workers: %d | Output: %s\n", p.Config.DPI, p.Config.Workers, p.Paths.OutputDocPath)
	fmt.Fprintln(p.Out, "-------------------")

	ex := extract.New(src, extract.Options{
		OutputDir:   p.Paths.OutputDir,
		DPI:         p.Config.DPI,
		Geometry:    p.Config.Geometry(),
		LabelLength: p.Config.LabelLength,
		PageSuffix:  p.Config.Collision == config.CollisionPageSuffix,
		SkipFailed:  p.Config.OnError == config.OnErrorSkip,
		Workers:     p.Config.Workers,
	}, p.Log)

	renderStart := time.Now()
	images, err := ex.ExtractAll(ctx)
	if err != nil {
		return nil, err
	}
	res.RenderTime = time.Since(renderStart)
	res.Images = images
	res.Skipped = ex.Skipped()
	fmt.Fprintf(p.Out, "[>] Regions saved: %d\n", len(images))
	for _, s := range res.Skipped {
		fmt.Fprintf(p.Out, "[!] Skipped: %v\n", s)
	}

	assembleStart := time.Now()
	if err := p.assemble(ctx, images); err != nil {
		return nil, err
	}
	res.AssembleTime = time.Since(assembleStart)

	res.ManifestPath, err = extract.WriteManifest(&extract.Manifest{
		Version: ManifestVersion,
		Source:  filepath.Base(p.Paths.InputPath),
		DPI:     p.Config.DPI,
		Images:  p.manifestImages(images),
	}, p.Paths.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	res.TotalTime = time.Since(startTime)
	fmt.Fprintf(p.Out, "[+++] Images extracted: %d, skipped: %d\n", len(images), len(res.Skipped))
	fmt.Fprintf(p.Out, "[+++] Document saved: %s\n", p.Paths.OutputDocPath)

	if p.Config.ShowStats {
		p.report(res)
	}
	return res, nil
}

func (p *Project) documentOptions() document.Options {
	return document.Options{
		WidthInches:  p.Config.ImageWidthInches,
		CaptionLabel: p.Config.CaptionLabel,
		Placeholder:  p.Config.Placeholder,
		Author:       p.Paths.AuthorName,
		Append:       p.Config.Mode == config.ModeAppend,
		TraceQR:      p.Config.TraceQR,
		SourceName:   filepath.Base(p.Paths.InputPath),
	}
}

// prepareDocument makes sure a document exists at the output path and logs
// what an existing DOCX already holds.
func (p *Project) prepareDocument() error {
	path := p.Paths.OutputDocPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := document.CreateEmpty(p.Config.Format, path, p.documentOptions()); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		p.Log.WithField("path", path).Debug("empty document created")
		return nil
	} else if err != nil {
		return err
	}

	if p.Config.Format != config.FormatDocx {
		return nil
	}
	info, err := document.Inspect(path, p.Config.CaptionLabel)
	if err != nil {
		if p.Config.Mode == config.ModeAppend {
			return err
		}
		p.Log.WithError(err).Warn("existing document is unreadable and will be replaced")
		return nil
	}
	p.Log.WithFields(logrus.Fields{
		"path":     path,
		"author":   info.Author,
		"lines":    info.Lines,
		"captions": info.Captions,
		"mode":     p.Config.Mode,
	}).Info("existing document found")
	return nil
}

// manifestImages lists the images the document holds after this run. In
// append mode the images recorded by earlier runs stay in front.
func (p *Project) manifestImages(images []extract.Image) []extract.Image {
	if p.Config.Mode != config.ModeAppend {
		return images
	}
	prev, err := extract.ReadManifest(filepath.Join(p.Paths.OutputDir, extract.ManifestName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.Log.WithError(err).Warn("previous manifest ignored")
		}
		return images
	}
	return append(prev.Images, images...)
}

func (p *Project) assemble(ctx context.Context, images []extract.Image) error {
	entries := make([]document.Entry, 0, len(images))
	for _, img := range images {
		entries = append(entries, document.Entry{ImagePath: img.Path, Page: img.Page, Label: img.Label})
	}

	a, err := document.New(p.Config.Format, p.Paths.OutputDocPath, p.documentOptions())
	if err != nil {
		return err
	}
	if err := a.Assemble(ctx, entries); err != nil {
		return fmt.Errorf("assembling %s: %w", p.Paths.OutputDocPath, err)
	}
	return nil
}

func (p *Project) report(res *Result) {
	usage, err := system.CurrentUsage()
	if err != nil {
		p.Log.WithError(err).Warn("resource usage unavailable")
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Assembly: %.2fs\n"+
			"Regions: %d (skipped %d)\n"+
			"%s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, res.TotalTime.Seconds(), res.RenderTime.Seconds(), res.AssembleTime.Seconds(),
		len(res.Images), len(res.Skipped), usage,
	)
	fmt.Fprint(p.Out, report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Regions: %d | Skipped: %d | Total: %.2fs | Render: %.2fs | Assemble: %.2fs | RSS: %.1fMiB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Paths.InputPath),
		len(res.Images),
		len(res.Skipped),
		res.TotalTime.Seconds(),
		res.RenderTime.Seconds(),
		res.AssembleTime.Seconds(),
		float64(usage.RSS)/(1<<20),
	)

	f, err := os.OpenFile(filepath.Join(p.Paths.OutputDir, BenchmarkLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Fprintf(p.Out, "[!] Could not write %s: %v\n", BenchmarkLog, err)
	}
}
