// Package picker resolves the PDF the user wants to convert.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/ivlev/uloha2doc/internal/system"
)

// ErrCancelled is returned when the user closes the dialog without a choice.
var ErrCancelled = errors.New("no file selected")

type Picker interface {
	PickPDF(dir string) (string, error)
}

// Dialog opens the native file chooser.
type Dialog struct{}

func (Dialog) PickPDF(dir string) (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Select PDF file"),
		zenity.Filename(dir+string(filepath.Separator)),
		zenity.FileFilters{
			{Name: "PDF files", Patterns: []string{"*.pdf", "*.PDF"}, CaseFold: true},
		},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("file dialog: %w", err)
	}
	if path == "" {
		return "", ErrCancelled
	}
	return path, nil
}

// Latest picks the newest PDF in the folder without asking.
type Latest struct{}

func (Latest) PickPDF(dir string) (string, error) {
	return system.FindLatestPDF(dir)
}

// Fixed returns a path chosen on the command line.
type Fixed string

func (f Fixed) PickPDF(dir string) (string, error) {
	path := strings.TrimSpace(string(f))
	if path == "" {
		return "", ErrCancelled
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("input %s: %w", path, err)
	}
	return path, nil
}
