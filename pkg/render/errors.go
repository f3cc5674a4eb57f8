package render

import "errors"

var (
	// ErrConfiguration is reported before any GPU resource is allocated:
	// a missing collaborator or an unusable source format.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrContext means the GL context is lost or broken, the renderer must be discarded.
	ErrContext = errors.New("graphics context error")
	// ErrResource means a texture or framebuffer could not be allocated.
	ErrResource = errors.New("graphics resource error")

	ErrNotInitialized = errors.New("renderer is not initialized")
	ErrReleased       = errors.New("renderer is released")
	ErrState          = errors.New("wrong renderer state")
)
