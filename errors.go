package docrender

import "errors"

// ErrClosed is returned by operations on a closed Pipeline.
var ErrClosed = errors.New("docrender: pipeline closed")
