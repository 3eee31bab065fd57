//go:build !cgo

package render

import "errors"

// ErrWindowUnavailable is returned for the window surface in builds
// without cgo, which the desktop window backend needs.
var ErrWindowUnavailable = errors.New("render: window surface requires a cgo build; use terminal or headless")

func newWindowSurface(cfg Config) (Surface, error) {
	return nil, ErrWindowUnavailable
}
