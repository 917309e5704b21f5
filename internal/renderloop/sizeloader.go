package renderloop

import (
	"sync/atomic"
	"time"

	"github.com/ansiterm/videoplayer/internal/pipe"
	"github.com/ansiterm/videoplayer/internal/termsize"
)

// sizeLoader supplies the terminal cell size to the render loop, along with
// whether it changed since the last load (which forces a full-overwrite
// repaint).
type sizeLoader interface {
	// load returns the current size and whether it differs from what the
	// previous load returned.
	load() (cols, rows uint16, changed bool)
	// close releases any background resources the loader owns.
	close()
}

const changedTagBit = uint64(1) << 63

// DynamicSize polls the real terminal size on a background updater and
// caches the result in a single atomic word the render loop reads without
// blocking. A resize observed while the pipeline is paused re-arms the
// currently-held sample for re-render at the new size.
type DynamicSize struct {
	updater *termsize.Updater
	cache   atomic.Uint64
}

// PausedChecker reports whether the pipeline is currently paused, so a
// resize during pause can force a fresh render at the new dimensions.
type PausedChecker func() bool

// NewDynamicSize starts a [termsize.Updater] polling fd every interval.
// isPaused and reloader implement the "resize while paused re-renders"
// behavior: when the terminal size changes and isPaused reports true, the
// held sample is marked un-pulled via reloader so the render loop picks it
// up again at the new size.
func NewDynamicSize(
	interval time.Duration,
	fd int,
	isPaused PausedChecker,
	reloader *pipe.Reloader,
) *DynamicSize {
	return newDynamicSize(interval, func() (uint16, uint16) {
		return termsize.GetSizeUncached(fd)
	}, isPaused, reloader)
}

// newDynamicSize is [NewDynamicSize] with the size source injected, so
// tests can drive it without a real terminal.
func newDynamicSize(
	interval time.Duration,
	getSize func() (uint16, uint16),
	isPaused PausedChecker,
	reloader *pipe.Reloader,
) *DynamicSize {
	d := &DynamicSize{}

	d.store(getSize())

	d.updater = termsize.New(interval, getSize, func(cols, rows uint16) {
		d.store(cols, rows)

		if isPaused != nil && isPaused() {
			_ = reloader.Reload()
		}
	})

	return d
}

func (d *DynamicSize) store(cols, rows uint16) {
	word := (uint64(cols) << 16) | uint64(rows)
	d.cache.Store(word | changedTagBit)
}

func (d *DynamicSize) load() (cols, rows uint16, changed bool) {
	d.updater.TriggerReload()

	word := d.cache.And(^changedTagBit)
	changed = word&changedTagBit != 0
	cols = uint16((word >> 16) & 0xFFFF)
	rows = uint16(word & 0xFFFF)

	return cols, rows, changed
}

func (d *DynamicSize) close() {
	d.updater.Close()
}

// StaticSize returns a fixed size supplied by the user (e.g. --size WxH);
// changed is true only on the very first load.
type StaticSize struct {
	cols, rows uint16
	loaded     bool
}

// NewStaticSize returns a [StaticSize] loader fixed at cols x rows.
func NewStaticSize(cols, rows uint16) *StaticSize {
	return &StaticSize{cols: cols, rows: rows}
}

func (s *StaticSize) load() (cols, rows uint16, changed bool) {
	first := !s.loaded
	s.loaded = true

	return s.cols, s.rows, first
}

func (s *StaticSize) close() {}
