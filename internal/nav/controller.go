// Package nav turns "path changed" signals from the downloader site into
// resets and re-hydration of the history view.
package nav

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultRoute is the path on which the history view is shown.
const DefaultRoute = "/webapp/downloader"

// State is the lifecycle state of the history view.
type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}

// Session is what the controller drives on navigation.
type Session interface {
	Reset()
	LoadNextPage(ctx context.Context) (int, error)
}

// Controller resets the session on every logical navigation and hydrates
// it with the first page when the new path is the history route. Repeated
// signals for the path already current are ignored.
type Controller struct {
	session Session
	route   string
	log     *zap.Logger

	mu       sync.Mutex
	state    State
	lastPath string
	seen     bool
}

// NewController returns a Controller for route. An empty route means
// DefaultRoute.
func NewController(session Session, route string, log *zap.Logger) *Controller {
	if route == "" {
		route = DefaultRoute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{session: session, route: route, log: log.Named("nav")}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Path returns the last observed path.
func (c *Controller) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPath
}

// PathChanged handles one navigation signal. A hydration error is logged
// and returned; the view stays uninitialized and the same path is retried
// on its next signal.
func (c *Controller) PathChanged(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen && path == c.lastPath {
		return nil
	}
	c.seen = true
	c.lastPath = path
	c.state = Uninitialized
	c.session.Reset()

	if path != c.route {
		c.log.Debug("left history route", zap.String("path", path))
		return nil
	}

	n, err := c.session.LoadNextPage(ctx)
	if err != nil {
		c.log.Error("hydrate history failed", zap.String("path", path), zap.Error(err))
		c.seen = false
		return err
	}
	c.state = Initialized
	c.log.Info("history hydrated", zap.Int("records", n))
	return nil
}

// Run applies every path from src until src closes or ctx is done.
func (c *Controller) Run(ctx context.Context, src Source) error {
	changes := src.PathChanges()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			// Errors are logged by PathChanged; keep consuming.
			_ = c.PathChanged(ctx, path)
		}
	}
}
