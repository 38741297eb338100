package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/uloha2doc/internal/region"
)

// Output document formats.
const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"
)

// What happens to a document that already exists at the output path.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

// Image name collision policies.
const (
	CollisionOverwrite  = "overwrite"
	CollisionPageSuffix = "page-suffix"
)

// Render failure policies.
const (
	OnErrorFail = "fail"
	OnErrorSkip = "skip"
)

// Text block backends.
const (
	BackendFitz   = "fitz"
	BackendTabula = "tabula"
)

// ImagesDirName is created next to the input file, under its base name.
const ImagesDirName = "uloha_images"

type Config struct {
	DPI         int     `yaml:"dpi"`
	Margin      float64 `yaml:"margin"`
	OffsetX     float64 `yaml:"offset_x"`
	LabelLength int     `yaml:"label_length"`

	Format           string  `yaml:"format"`
	Mode             string  `yaml:"mode"`
	ImageWidthInches float64 `yaml:"image_width_inches"`
	CaptionLabel     string  `yaml:"caption_label"`
	Placeholder      string  `yaml:"placeholder"`
	TraceQR          bool    `yaml:"trace_qr"`

	Collision string `yaml:"collision"`
	OnError   string `yaml:"on_render_error"`
	Backend   string `yaml:"backend"`
	Workers   int    `yaml:"workers"`

	ShowStats    bool   `yaml:"stats"`
	Verbose      bool   `yaml:"verbose"`
	BuildVersion string `yaml:"-"`
}

// Default returns the settings that reproduce the classic problem-sheet layout.
func Default() Config {
	g := region.DefaultGeometry()
	return Config{
		DPI:              300,
		Margin:           g.Margin,
		OffsetX:          g.OffsetX,
		LabelLength:      region.DefaultLabelLength,
		Format:           FormatDocx,
		Mode:             ModeReplace,
		ImageWidthInches: 6,
		CaptionLabel:     "Author: ",
		Placeholder:      "text",
		Collision:        CollisionOverwrite,
		OnError:          OnErrorFail,
		Backend:          BackendFitz,
		Workers:          1,
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Geometry returns the crop insets.
func (c Config) Geometry() region.Geometry {
	return region.Geometry{Margin: c.Margin, OffsetX: c.OffsetX}
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Margin < 0 || c.OffsetX < 0 {
		return fmt.Errorf("margin and offset_x must not be negative")
	}
	if c.ImageWidthInches <= 0 {
		return fmt.Errorf("image_width_inches must be positive, got %g", c.ImageWidthInches)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if err := oneOf("format", c.Format, FormatDocx, FormatPDF); err != nil {
		return err
	}
	if err := oneOf("mode", c.Mode, ModeReplace, ModeAppend); err != nil {
		return err
	}
	if c.Mode == ModeAppend && c.Format != FormatDocx {
		return fmt.Errorf("mode %q is only supported for the %s format", ModeAppend, FormatDocx)
	}
	if err := oneOf("collision", c.Collision, CollisionOverwrite, CollisionPageSuffix); err != nil {
		return err
	}
	if err := oneOf("on_render_error", c.OnError, OnErrorFail, OnErrorSkip); err != nil {
		return err
	}
	return oneOf("backend", c.Backend, BackendFitz, BackendTabula)
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q (allowed: %s)", name, value, strings.Join(allowed, ", "))
}

// RunPaths carries everything the run needs from the environment.
// It is resolved once at startup; nothing below the driver looks at the
// working directory, the dialog or the OS user on its own.
type RunPaths struct {
	InputPath     string
	OutputDir     string
	OutputDocPath string
	AuthorName    string
}

// PDFOutputSuffix keeps a PDF output from landing on the input file.
const PDFOutputSuffix = "_ulohy"

// DerivePaths places the image folder and the document next to the input:
// lessons/set1.pdf gives lessons/set1/uloha_images and lessons/set1.docx.
func DerivePaths(inputPath, format, author string) RunPaths {
	base := inputPath
	if strings.EqualFold(filepath.Ext(base), ".pdf") {
		base = base[:len(base)-len(".pdf")]
	}
	doc := base + "." + format
	if format == FormatPDF {
		doc = base + PDFOutputSuffix + ".pdf"
	}
	return RunPaths{
		InputPath:     inputPath,
		OutputDir:     filepath.Join(base, ImagesDirName),
		OutputDocPath: doc,
		AuthorName:    author,
	}
}
