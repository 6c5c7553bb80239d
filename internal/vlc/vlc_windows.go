package vlc

import (
	"errors"

	"github.com/tactusaudio/tactus/internal/backend"
)

// Options configures the library lookup.
type Options struct {
	LibraryPath string
}

// Open is not supported on Windows.
func Open(_ Options) (backend.Backend, error) {
	return nil, errors.New("vlc: libvlc backend is not supported on windows")
}
