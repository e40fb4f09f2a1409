package encoder

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// GIFSink buffers paletted frames and writes a looping animated GIF on
// Close.
type GIFSink struct {
	w   io.Writer
	gif gif.GIF

	file   *os.File
	lock   *flock.Flock
	closed bool
}

var _ Sink = &GIFSink{}

func NewGIFSink(w io.Writer) *GIFSink {
	return &GIFSink{
		w: w,
		gif: gif.GIF{
			LoopCount: 0,
		},
	}
}

// CreateGIFFile creates the file at path and holds an exclusive lock on
// path.lock until the sink is closed or aborted.
func CreateGIFFile(path string) (*GIFSink, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to lock %s", path)
	}

	if !locked {
		return nil, errors.Wrapf(ErrOutputLocked, "%s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		unlock(lock)
		return nil, errors.Wrapf(err, "unable to create %s", path)
	}

	sink := NewGIFSink(f)
	sink.file = f
	sink.lock = lock
	return sink, nil
}

func (s *GIFSink) Len() int {
	return len(s.gif.Image)
}

func (s *GIFSink) Add(img image.Image, duration time.Duration) error {
	if s.closed {
		return ErrClosed
	}

	bounds := img.Bounds()
	if len(s.gif.Image) > 0 && bounds != s.gif.Image[0].Bounds() {
		return errors.Wrapf(ErrFrameSize, "frame %d is %v", len(s.gif.Image), bounds)
	}

	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)

	s.gif.Image = append(s.gif.Image, paletted)
	s.gif.Delay = append(s.gif.Delay, gifDelay(duration))
	return nil
}

func (s *GIFSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.release()

	var err error
	if len(s.gif.Image) == 0 {
		err = ErrNoFrames
	} else if encodeErr := gif.EncodeAll(s.w, &s.gif); encodeErr != nil {
		err = errors.Wrap(encodeErr, "gif encode error")
	} else {
		log.Debugf("encoded %d gif frames", len(s.gif.Image))
	}

	if s.file != nil {
		err = multierr.Append(err, errors.Wrapf(s.file.Close(), "unable to close %s", s.file.Name()))
	}
	return err
}

// Abort drops the buffered frames and removes the partially created file.
func (s *GIFSink) Abort() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.release()

	s.gif.Image = nil
	s.gif.Delay = nil

	if s.file == nil {
		return nil
	}

	name := s.file.Name()
	if err := s.file.Close(); err != nil {
		return errors.Wrapf(err, "unable to close %s", name)
	}
	return errors.Wrapf(os.Remove(name), "unable to remove %s", name)
}

func (s *GIFSink) release() {
	if s.lock != nil {
		unlock(s.lock)
		s.lock = nil
	}
}

// gifDelay converts a duration to the 100ths of a second GIF uses.
func gifDelay(d time.Duration) int {
	return max(1, int(d/(10*time.Millisecond)))
}

func unlock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		log.WithError(err).Errorf("output unlock error: %s", lock.Path())
		return
	}

	_ = os.Remove(lock.Path())
}
