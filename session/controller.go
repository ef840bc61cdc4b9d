package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memestudio/gateway"
	"memestudio/loader"
	"memestudio/logging"
	"memestudio/render"
)

// Sentinel errors returned by controller transitions. The HTTP layer maps
// these to status codes.
var (
	ErrBusy              = errors.New("operation already in progress")
	ErrNoImage           = errors.New("no image loaded")
	ErrNoSurface         = errors.New("nothing to export")
	ErrUnknownSuggestion = errors.New("caption is not one of the current suggestions")
)

// TaskObserver receives lifecycle events for asynchronous operations. Used by
// the websocket feed and the metrics collector. Callbacks run outside the
// controller lock.
type TaskObserver interface {
	TaskStarted(sessionID string, kind OpKind)
	TaskFinished(sessionID string, kind OpKind, taskErr error)
}

// Controller guards one session's state. All transitions take the mutex;
// remote provider calls run outside it, and their results are applied only
// when the per-kind request token still matches. A token bumped by an
// intervening reset makes the late completion a no-op.
type Controller struct {
	mu       sync.Mutex
	id       string
	state    State
	tokens   map[OpKind]uint64
	loader   *loader.Loader
	renderer *render.Renderer
	provider gateway.Provider
	logger   *logging.Logger
	observer TaskObserver
}

// NewController builds a controller for one session.
func NewController(id string, ld *loader.Loader, rd *render.Renderer, provider gateway.Provider, logger *logging.Logger) *Controller {
	return &Controller{
		id:       id,
		state:    newState(),
		tokens:   make(map[OpKind]uint64),
		loader:   ld,
		renderer: rd,
		provider: provider,
		logger:   logger,
	}
}

// SetObserver attaches a task lifecycle observer. Call before serving traffic.
func (c *Controller) SetObserver(o TaskObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// beginLocked marks kind busy and returns the request token the completion
// must present. A second call for the same kind while busy returns ErrBusy.
// Caller holds the lock.
func (c *Controller) beginLocked(kind OpKind) (uint64, error) {
	if c.state.Busy[kind] {
		return 0, ErrBusy
	}
	c.state.Busy[kind] = true
	c.tokens[kind]++
	return c.tokens[kind], nil
}

// begin takes the request token for kind and notifies the observer.
func (c *Controller) begin(kind OpKind) (uint64, error) {
	c.mu.Lock()
	token, err := c.beginLocked(kind)
	obs := c.observer
	c.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if obs != nil {
		obs.TaskStarted(c.id, kind)
	}
	return token, nil
}

// beginWithPayload captures the provider payload and takes the request token
// in one critical section, so the image the operation runs on is exactly the
// image the token guards. A load interleaved after this point bumps the token
// and the completion lands stale.
func (c *Controller) beginWithPayload(kind OpKind) (uint64, gateway.Payload, error) {
	c.mu.Lock()
	payload, err := c.payloadLocked()
	if err != nil {
		c.mu.Unlock()
		return 0, gateway.Payload{}, err
	}
	token, err := c.beginLocked(kind)
	obs := c.observer
	c.mu.Unlock()

	if err != nil {
		return 0, gateway.Payload{}, err
	}
	if obs != nil {
		obs.TaskStarted(c.id, kind)
	}
	return token, payload, nil
}

// finish clears the busy flag for kind if token is still current, applies
// apply (which may be nil) under the lock, and notifies the observer. A stale
// token means a reset superseded this operation; its result is discarded.
func (c *Controller) finish(kind OpKind, token uint64, taskErr error, apply func()) {
	c.mu.Lock()
	stale := c.tokens[kind] != token
	if !stale {
		c.state.Busy[kind] = false
		if apply != nil {
			apply()
		}
	}
	obs := c.observer
	c.mu.Unlock()

	if stale && c.logger != nil {
		c.logger.Debug("discarding stale completion",
			zap.String("session", c.id),
			zap.String("op", string(kind)))
	}
	if obs != nil {
		obs.TaskFinished(c.id, kind, taskErr)
	}
}

// resetForImage installs a freshly loaded image and clears everything derived
// from the previous one. Tokens for the other operation kinds are bumped so
// any in-flight completions land stale. Caller holds the lock.
func (c *Controller) resetForImage(img *loader.SourceImage) error {
	for _, kind := range OpKinds {
		if kind == OpLoad {
			continue
		}
		c.tokens[kind]++
		c.state.Busy[kind] = false
	}
	c.state.Image = img
	c.state.Captions.Clear()
	c.state.Suggestions = nil
	c.state.Analysis = nil
	c.state.LastError = ""
	return c.recomputeSurface()
}

// recomputeSurface re-renders the working surface from the current image and
// captions. Caller holds the lock.
func (c *Controller) recomputeSurface() error {
	if c.state.Image == nil {
		c.state.Surface = nil
		c.state.SurfaceID = ""
		return nil
	}
	surface, err := c.renderer.Render(c.state.Image.Decoded, c.state.Captions.toRender())
	if err != nil {
		return fmt.Errorf("rendering surface: %w", err)
	}
	c.state.Surface = surface
	c.state.SurfaceID = newSurfaceID()
	return nil
}

// newSurfaceID returns a short identifier for the current surface, used in
// export filenames.
func newSurfaceID() string {
	return uuid.NewString()[:8]
}

// payloadLocked builds the provider payload from the loaded image. Caller
// holds the lock.
func (c *Controller) payloadLocked() (gateway.Payload, error) {
	if c.state.Image == nil {
		return gateway.Payload{}, ErrNoImage
	}
	return gateway.Payload{Data: c.state.Image.Encoded, MIME: c.state.Image.MIME}, nil
}

// LoadUpload loads an uploaded image and resets the session around it.
func (c *Controller) LoadUpload(r io.Reader) (Snapshot, error) {
	return c.load(func() (*loader.SourceImage, error) {
		return c.loader.FromUpload(r)
	})
}

// LoadTemplate fetches a catalog template and resets the session around it.
func (c *Controller) LoadTemplate(ctx context.Context, templateID string) (Snapshot, error) {
	return c.load(func() (*loader.SourceImage, error) {
		return c.loader.FromTemplate(ctx, templateID)
	})
}

func (c *Controller) load(fetch func() (*loader.SourceImage, error)) (Snapshot, error) {
	token, err := c.begin(OpLoad)
	if err != nil {
		return Snapshot{}, err
	}

	img, loadErr := fetch()

	var applyErr error
	c.finish(OpLoad, token, loadErr, func() {
		if loadErr != nil {
			c.state.LastError = loadErr.Error()
			return
		}
		applyErr = c.resetForImage(img)
	})
	if loadErr != nil {
		return c.SnapshotState(), loadErr
	}
	if applyErr != nil {
		return c.SnapshotState(), applyErr
	}
	return c.SnapshotState(), nil
}

// SetManualCaptions sets top and bottom text, clearing any selected magic
// caption, and re-renders.
func (c *Controller) SetManualCaptions(top, bottom string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Image == nil {
		return c.snapshotLocked(), ErrNoImage
	}
	c.state.Captions.SetManual(strings.TrimSpace(top), strings.TrimSpace(bottom))
	if err := c.recomputeSurface(); err != nil {
		return c.snapshotLocked(), err
	}
	c.state.LastError = ""
	return c.snapshotLocked(), nil
}

// SelectCaption picks one of the current suggestions as the magic caption,
// clearing manual text, and re-renders.
func (c *Controller) SelectCaption(text string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Image == nil {
		return c.snapshotLocked(), ErrNoImage
	}
	found := false
	for _, s := range c.state.Suggestions {
		if s.Text == text {
			found = true
			break
		}
	}
	if !found {
		return c.snapshotLocked(), ErrUnknownSuggestion
	}
	c.state.Captions.Select(text)
	if err := c.recomputeSurface(); err != nil {
		return c.snapshotLocked(), err
	}
	c.state.LastError = ""
	return c.snapshotLocked(), nil
}

// ClearCaptions removes all caption text and re-renders the bare image.
func (c *Controller) ClearCaptions() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Image == nil {
		return c.snapshotLocked(), ErrNoImage
	}
	c.state.Captions.Clear()
	if err := c.recomputeSurface(); err != nil {
		return c.snapshotLocked(), err
	}
	c.state.LastError = ""
	return c.snapshotLocked(), nil
}

// SuggestCaptions asks the provider for caption ideas and replaces the
// suggestion list wholesale on success.
func (c *Controller) SuggestCaptions(ctx context.Context) (Snapshot, error) {
	token, payload, err := c.beginWithPayload(OpCaptions)
	if err != nil {
		return c.SnapshotState(), err
	}

	suggestions, reqErr := c.provider.SuggestCaptions(ctx, payload)

	c.finish(OpCaptions, token, reqErr, func() {
		if reqErr != nil {
			c.state.LastError = reqErr.Error()
			return
		}
		c.state.Suggestions = suggestions
		c.state.LastError = ""
	})
	if reqErr != nil {
		return c.SnapshotState(), reqErr
	}
	return c.SnapshotState(), nil
}

// Edit sends the loaded image and an instruction to the provider and
// substitutes the returned image wholesale. Caption text survives the edit;
// the surface is re-rendered against the new pixels. There is no undo.
func (c *Controller) Edit(ctx context.Context, instruction string) (Snapshot, error) {
	instruction = strings.TrimSpace(instruction)

	token, payload, err := c.beginWithPayload(OpEdit)
	if err != nil {
		return c.SnapshotState(), err
	}

	edited, reqErr := c.provider.EditImage(ctx, payload, instruction)

	var applyErr error
	c.finish(OpEdit, token, reqErr, func() {
		if reqErr != nil {
			c.state.LastError = reqErr.Error()
			return
		}
		img, loadErr := loader.FromEdited(edited.Data)
		if loadErr != nil {
			applyErr = loadErr
			c.state.LastError = loadErr.Error()
			return
		}
		c.state.Image = img
		c.state.LastError = ""
		applyErr = c.recomputeSurface()
	})
	if reqErr != nil {
		return c.SnapshotState(), reqErr
	}
	if applyErr != nil {
		return c.SnapshotState(), applyErr
	}
	return c.SnapshotState(), nil
}

// Analyze asks the provider to describe the loaded image and replaces the
// analysis slot wholesale on success.
func (c *Controller) Analyze(ctx context.Context) (Snapshot, error) {
	token, payload, err := c.beginWithPayload(OpAnalyze)
	if err != nil {
		return c.SnapshotState(), err
	}

	result, reqErr := c.provider.AnalyzeImage(ctx, payload)

	c.finish(OpAnalyze, token, reqErr, func() {
		if reqErr != nil {
			c.state.LastError = reqErr.Error()
			return
		}
		c.state.Analysis = result
		c.state.LastError = ""
	})
	if reqErr != nil {
		return c.SnapshotState(), reqErr
	}
	return c.SnapshotState(), nil
}

// Surface returns the current rendered PNG and its identifier, or
// ErrNoSurface when no image is loaded.
func (c *Controller) Surface() (string, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Surface == nil {
		return "", nil, ErrNoSurface
	}
	return c.state.SurfaceID, c.state.Surface.PNG, nil
}

// SnapshotState returns a read-only copy of the session state.
func (c *Controller) SnapshotState() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Captions:    c.state.Captions,
		Suggestions: append([]gateway.CaptionSuggestion(nil), c.state.Suggestions...),
		Analysis:    c.state.Analysis,
		LastError:   c.state.LastError,
		Busy:        make(map[OpKind]bool, len(c.state.Busy)),
	}
	for kind, busy := range c.state.Busy {
		snap.Busy[kind] = busy
	}
	if c.state.Image != nil {
		snap.HasImage = true
		snap.ImageWidth = c.state.Image.Width
		snap.ImageHeight = c.state.Image.Height
		snap.Origin = c.state.Image.Origin.String()
	}
	if c.state.Surface != nil {
		snap.HasSurface = true
		snap.SurfaceW = c.state.Surface.Width
		snap.SurfaceH = c.state.Surface.Height
	}
	return snap
}
