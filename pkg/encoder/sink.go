package encoder

import (
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "encoder")

var (
	ErrOutputLocked = errors.New("output is locked by another process")
	ErrNoFrames     = errors.New("no frames were added")
	ErrFrameSize    = errors.New("frame size differs from the first frame")
	ErrClosed       = errors.New("sink is closed")
)

// Sink consumes rendered frames in order.
type Sink interface {
	// Add appends a frame that stays on screen for the given duration.
	Add(img image.Image, duration time.Duration) error

	// Close finishes the output.
	Close() error

	// Abort stops the output and releases its resources, keeping only
	// what can not be taken back.
	Abort() error
}

// New opens a sink for the output path: a .gif file becomes an animated
// GIF, a path without extension becomes a directory of numbered PNGs.
func New(path string) (Sink, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gif":
		return CreateGIFFile(path)
	case "":
		return NewPNGDirSink(path)
	default:
		return nil, errors.Errorf("unsupported output format %q, use .gif or a directory", ext)
	}
}
