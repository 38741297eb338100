package raster

import (
	"image"
	"sync"
)

// maxIdle bounds the buffers kept per width. Region crops of one run share
// the page width, so a handful covers every worker.
const maxIdle = 4

// imagePool recycles crop buffers. Buffers are grouped by width and any
// idle buffer large enough for the requested height is re-sliced, since
// regions on a page differ in height only.
type imagePool struct {
	mu   sync.Mutex
	idle map[int][]*image.RGBA
}

func newImagePool() *imagePool {
	return &imagePool{idle: make(map[int][]*image.RGBA)}
}

var defaultPool = newImagePool()

// GetImage returns a buffer from the shared pool.
func GetImage(rect image.Rectangle) *image.RGBA {
	return defaultPool.Get(rect)
}

// PutImage returns a buffer to the shared pool.
func PutImage(img *image.RGBA) {
	defaultPool.Put(img)
}

// Get returns a buffer with the bounds of rect. Its pixels are stale and
// must be overwritten by the caller.
func (p *imagePool) Get(rect image.Rectangle) *image.RGBA {
	w := rect.Dx()
	need := 4 * w * rect.Dy()

	p.mu.Lock()
	list := p.idle[w]
	for i := len(list) - 1; i >= 0; i-- {
		img := list[i]
		if cap(img.Pix) < need {
			continue
		}
		p.idle[w] = append(list[:i], list[i+1:]...)
		p.mu.Unlock()

		img.Pix = img.Pix[:need]
		img.Stride = 4 * w
		img.Rect = rect
		return img
	}
	p.mu.Unlock()

	return image.NewRGBA(rect)
}

func (p *imagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Empty() {
		return
	}
	w := img.Rect.Dx()

	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.idle[w]
	if len(list) < maxIdle {
		p.idle[w] = append(list, img)
		return
	}
	// keep the largest buffers
	for i, old := range list {
		if cap(old.Pix) < cap(img.Pix) {
			list[i] = img
			return
		}
	}
}
