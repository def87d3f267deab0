package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/scancart-backend/internal/cart"
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/internal/scanner"
	"github.com/angelmondragon/scancart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	"github.com/angelmondragon/scancart-backend/pkg/metrics"
)

const cueTimeout = 2 * time.Second

// Merger is the slice of the cart store the controller needs.
type Merger interface {
	Merge(ctx context.Context, p catalog.Product) cart.Snapshot
}

// State is the observable session state.
type State struct {
	SessionID        string           `json:"session_id,omitempty"`
	Status           enums.ScanState  `json:"status"`
	CameraActive     bool             `json:"camera_active"`
	Container        string           `json:"container,omitempty"`
	PendingCandidate *catalog.Product `json:"pending_candidate"`
}

type Config struct {
	Decoder   scanner.Decoder
	Cue       scanner.Cue
	Resolver  catalog.Resolver
	Cart      Merger
	Container string
	Logger    *logger.Logger
	Metrics   *metrics.SessionMetrics
}

// Controller drives one scan session at a time: start, accept the first
// decode, resolve it into a pending candidate, and release the decoder on
// every exit path. Decoder transitions happen under mu so start, cancel and
// teardown cannot interleave.
type Controller struct {
	decoder   scanner.Decoder
	cue       scanner.Cue
	resolver  catalog.Resolver
	cart      Merger
	container string
	logg      *logger.Logger
	metrics   *metrics.SessionMetrics
	newID     func() string

	mu         sync.Mutex
	status     enums.ScanState
	sessionID  string
	generation uint64
	pending    *catalog.Product

	cues sync.WaitGroup
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("decoder required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if cfg.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Container) == "" {
		return nil, fmt.Errorf("scanner container required")
	}
	cue := cfg.Cue
	if cue == nil {
		cue = scanner.NopCue{}
	}
	return &Controller{
		decoder:   cfg.Decoder,
		cue:       cue,
		resolver:  cfg.Resolver,
		cart:      cfg.Cart,
		container: cfg.Container,
		logg:      cfg.Logger,
		metrics:   cfg.Metrics,
		newID:     func() string { return uuid.NewString() },
		status:    enums.ScanStateIdle,
	}, nil
}

// Start opens a new session and activates the decoder. Starting while a
// session is active or resolving is rejected and changes nothing.
func (c *Controller) Start(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != enums.ScanStateIdle {
		c.metrics.IncEvent(metrics.SessionEventRejected)
		return c.stateLocked(), pkgerrors.New(pkgerrors.CodeStateConflict, "scan session already in progress").
			WithDetails(map[string]any{"session_id": c.sessionID, "status": c.status})
	}

	gen := c.generation + 1
	id := c.newID()
	ctx = c.logg.WithSessionID(ctx, id)

	// bus decoders call back without a request context
	decodeCtx := context.WithoutCancel(ctx)
	onDecode := func(code string) {
		c.handleDecode(decodeCtx, gen, code)
	}
	if err := c.decoder.Activate(ctx, c.container, onDecode); err != nil {
		c.logg.Error(ctx, "scanner activation failed", err)
		return c.stateLocked(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate scanner")
	}

	c.generation = gen
	c.sessionID = id
	c.pending = nil
	c.status = enums.ScanStateActive
	c.metrics.IncEvent(metrics.SessionEventStarted)
	c.logg.Info(ctx, "scan session started")
	return c.stateLocked(), nil
}

// HandleDecode feeds a decoded code into the current session. Only the first
// decode of an active session is accepted; the rest report false. The lookup
// outlives ctx so an aborted request still yields the real candidate.
func (c *Controller) HandleDecode(ctx context.Context, code string) (catalog.Product, bool) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return c.handleDecode(context.WithoutCancel(ctx), gen, code)
}

func (c *Controller) handleDecode(ctx context.Context, gen uint64, code string) (catalog.Product, bool) {
	c.mu.Lock()
	if c.status != enums.ScanStateActive || c.generation != gen {
		c.mu.Unlock()
		c.metrics.IncEvent(metrics.SessionEventIgnored)
		return catalog.Product{}, false
	}
	c.status = enums.ScanStateResolved
	ctx = c.logg.WithSessionID(ctx, c.sessionID)
	c.mu.Unlock()

	c.metrics.IncEvent(metrics.SessionEventDecoded)
	c.playCue(ctx)

	product := c.resolver.Resolve(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	// a cancelled session still receives its result; a newer session does not
	if c.generation == gen {
		p := product
		c.pending = &p
	}
	if c.generation == gen && c.status == enums.ScanStateResolved {
		c.status = enums.ScanStateIdle
		c.deactivateLocked(ctx)
	}
	c.logg.Info(c.logg.WithFields(ctx, map[string]any{"code": code, "candidate": product.Name}), "scan resolved")
	return product, true
}

func (c *Controller) playCue(ctx context.Context) {
	c.cues.Add(1)
	go func() {
		defer c.cues.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logg.Warn(c.logg.WithField(ctx, "panic", fmt.Sprint(r)), "audio cue panicked")
			}
		}()
		cueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cueTimeout)
		defer cancel()
		if err := c.cue.Play(cueCtx); err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "audio cue failed")
		}
	}()
}

// Cancel closes the current session without a candidate. Idle is a no-op.
func (c *Controller) Cancel(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == enums.ScanStateIdle {
		return c.stateLocked()
	}
	ctx = c.logg.WithSessionID(ctx, c.sessionID)
	c.status = enums.ScanStateIdle
	c.deactivateLocked(ctx)
	c.metrics.IncEvent(metrics.SessionEventCancelled)
	c.logg.Info(ctx, "scan session cancelled")
	return c.stateLocked()
}

// Confirm merges the pending candidate into the cart and clears it. It works
// in any session state.
func (c *Controller) Confirm(ctx context.Context) (cart.Snapshot, error) {
	c.mu.Lock()
	candidate := c.pending
	c.pending = nil
	c.mu.Unlock()

	if candidate == nil {
		return cart.Snapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending candidate to confirm")
	}
	snap := c.cart.Merge(ctx, *candidate)
	c.logg.Info(c.logg.WithField(ctx, "candidate", candidate.Name), "candidate added to cart")
	return snap, nil
}

// State reports the current session and pending candidate.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close releases the decoder if a session is open and waits for in-flight cues.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.status != enums.ScanStateIdle {
		c.status = enums.ScanStateIdle
		c.deactivateLocked(context.Background())
	}
	c.mu.Unlock()
	c.cues.Wait()
}

func (c *Controller) deactivateLocked(ctx context.Context) {
	if err := c.decoder.Deactivate(); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "scanner deactivation failed")
	}
}

func (c *Controller) stateLocked() State {
	st := State{
		SessionID:    c.sessionID,
		Status:       c.status,
		CameraActive: c.status != enums.ScanStateIdle,
	}
	if st.CameraActive {
		st.Container = c.container
	}
	if c.pending != nil {
		p := *c.pending
		st.PendingCandidate = &p
	}
	return st
}
