// Package extract turns the header regions of every PDF page into PNG files.
package extract

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/uloha2doc/internal/raster"
	"github.com/ivlev/uloha2doc/internal/region"
	"github.com/ivlev/uloha2doc/internal/source"
)

// Image is a rendered region stored on disk.
type Image struct {
	Path  string      `yaml:"path"`
	Page  int         `yaml:"page"` // 0-based
	Label string      `yaml:"label"`
	Rect  region.Rect `yaml:"rect"`
}

// Options controls geometry, naming and failure handling.
type Options struct {
	OutputDir   string
	DPI         int
	Geometry    region.Geometry
	LabelLength int
	PageSuffix  bool // disambiguate equal labels with the page number
	SkipFailed  bool // log and skip regions that cannot be rendered
	Workers     int
}

type Extractor struct {
	Source source.Source
	Opts   Options
	Log    logrus.FieldLogger

	skipped []*RenderError
	saveMu  sync.Mutex
}

func New(src source.Source, opts Options, log logrus.FieldLogger) *Extractor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Extractor{Source: src, Opts: opts, Log: log}
}

// Skipped lists the regions dropped under the skip policy.
func (e *Extractor) Skipped() []*RenderError {
	return e.skipped
}

// ExtractAll processes every page and returns the images in page order,
// top to bottom within a page. With more than one worker pages are rendered
// concurrently; the order of the result does not change. A single worker
// walks the pages with ExtractPage.
func (e *Extractor) ExtractAll(ctx context.Context) ([]Image, error) {
	pageCount := e.Source.PageCount()
	if e.Opts.Workers == 1 {
		var all []Image
		for i := 0; i < pageCount; i++ {
			images, err := e.ExtractPage(ctx, i)
			if err != nil {
				return nil, err
			}
			all = append(all, images...)
		}
		return all, nil
	}

	perPage := make([][]Image, pageCount)
	failures := make([][]*RenderError, pageCount)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Opts.Workers)

	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			images, skipped, err := e.extractPage(i)
			if err != nil {
				return err
			}
			perPage[i] = images
			failures[i] = skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Image
	for i := range perPage {
		all = append(all, perPage[i]...)
		e.skipped = append(e.skipped, failures[i]...)
	}
	return all, nil
}

// ExtractPage renders the regions of a single page.
func (e *Extractor) ExtractPage(ctx context.Context, index int) ([]Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	images, skipped, err := e.extractPage(index)
	e.skipped = append(e.skipped, skipped...)
	return images, err
}

func (e *Extractor) extractPage(index int) ([]Image, []*RenderError, error) {
	log := e.Log.WithField("page", index+1)

	page, err := e.Source.LoadPage(index)
	if err != nil {
		return nil, nil, err
	}

	regions := region.Layout(index, page.Blocks, page.Width, page.Height, e.Opts.Geometry)
	log.WithField("regions", len(regions)).Debug("page scanned")
	if len(regions) == 0 {
		return nil, nil, nil
	}

	// one render per page, every region is cropped from it
	rendered, renderErr := e.Source.RenderPage(index, e.Opts.DPI)

	var images []Image
	var skipped []*RenderError
	for _, r := range regions {
		img, err := e.renderRegion(rendered, renderErr, r)
		if err != nil {
			var re *RenderError
			if e.Opts.SkipFailed && errors.As(err, &re) {
				log.WithFields(logrus.Fields{"label": r.Label}).WithError(re.Err).Warn("region skipped")
				skipped = append(skipped, re)
				continue
			}
			return nil, nil, err
		}
		log.WithField("path", img.Path).Info("region saved")
		images = append(images, img)
	}
	return images, skipped, nil
}

func (e *Extractor) renderRegion(page image.Image, pageErr error, r region.Region) (Image, error) {
	if err := region.Validate(r); err != nil {
		return Image{}, &RenderError{Page: r.Page, Label: r.Label, Err: err}
	}
	if pageErr != nil {
		return Image{}, &RenderError{Page: r.Page, Label: r.Label, Err: pageErr}
	}

	crop, err := raster.Crop(page, r.Rect, e.Opts.DPI)
	if err != nil {
		return Image{}, &RenderError{Page: r.Page, Label: r.Label, Err: err}
	}
	defer raster.PutImage(crop)

	label := region.Label(r.Label, e.Opts.LabelLength)
	path := filepath.Join(e.Opts.OutputDir, region.FileName(label, r.Page, e.Opts.PageSuffix))
	// pages rendered in parallel may share a file name
	e.saveMu.Lock()
	err = raster.SavePNG(path, crop)
	e.saveMu.Unlock()
	if err != nil {
		return Image{}, err
	}

	return Image{Path: path, Page: r.Page, Label: label, Rect: r.Rect}, nil
}
