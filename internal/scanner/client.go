package scanner

import (
	"context"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
)

// ClientDecoder is used when the browser runs the camera and decoder itself.
// Activation only records that the UI should show the camera view; decoded
// codes arrive over HTTP and go straight to the session.
type ClientDecoder struct {
	mu        sync.Mutex
	active    bool
	container string
}

func NewClientDecoder() *ClientDecoder {
	return &ClientDecoder{}
}

func (c *ClientDecoder) Activate(ctx context.Context, container string, onDecode func(code string)) error {
	if strings.TrimSpace(container) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "scanner container is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.container = container
	return nil
}

func (c *ClientDecoder) Deactivate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.container = ""
	return nil
}

// Active reports whether the UI should currently show the camera, and where.
func (c *ClientDecoder) Active() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.container
}
