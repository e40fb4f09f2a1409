package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// PNGDirSink writes every frame as frame_00000.png, frame_00001.png, ...
// into a directory. Frame durations are not kept.
type PNGDirSink struct {
	dir   string
	count int

	lock   *flock.Flock
	closed bool
}

var _ Sink = &PNGDirSink{}

func NewPNGDirSink(dir string) (*PNGDirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory %s", dir)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to lock %s", dir)
	}

	if !locked {
		return nil, errors.Wrapf(ErrOutputLocked, "%s", dir)
	}

	return &PNGDirSink{dir: dir, lock: lock}, nil
}

func FrameFileName(index int) string {
	return fmt.Sprintf("frame_%05d.png", index)
}

func (s *PNGDirSink) Len() int {
	return s.count
}

func (s *PNGDirSink) Add(img image.Image, _ time.Duration) error {
	if s.closed {
		return ErrClosed
	}

	path := filepath.Join(s.dir, FrameFileName(s.count))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "png encode error: %s", path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "unable to close %s", path)
	}

	s.count++
	return nil
}

func (s *PNGDirSink) Close() error {
	if s.closed {
		return nil
	}

	s.release()
	if s.count == 0 {
		return ErrNoFrames
	}

	log.Debugf("wrote %d png frames to %s", s.count, s.dir)
	return nil
}

// Abort keeps the frames already written.
func (s *PNGDirSink) Abort() error {
	if s.closed {
		return nil
	}

	s.release()
	return nil
}

func (s *PNGDirSink) release() {
	s.closed = true
	unlock(s.lock)
}
