// Package restore decides how a file browser comes back on startup: from
// its persisted snapshot, or from the target of a deep link resolved by the
// router.
//
// A Coordinator runs once per browser-open event. It marks the browser as
// restoring, optionally waits for the router's first "routed" event, then
// applies exactly one strategy:
//
//   - routed: the tree resolver supplied a file and/or browser path. The
//     snapshot is restored without populating the listing and open-path is
//     dispatched for the file, then for the browser path, each awaited.
//   - plain: no router, no tree resolver, or no paths. The snapshot is
//     restored in full and the listing refreshed.
//
// The browser is marked settled only when the strategy completed. If the
// main region is empty afterwards a launcher is requested.
package restore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/commands"
	"github.com/fruitsalade/drivesbrowser/internal/events"
	"github.com/fruitsalade/drivesbrowser/internal/filebrowser"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
	"github.com/fruitsalade/drivesbrowser/internal/router"
	"github.com/fruitsalade/drivesbrowser/internal/shell"
)

// Strategy names the restoration path a run took.
type Strategy string

const (
	StrategyUnresolved Strategy = "unresolved"
	StrategyPlain      Strategy = "plain"
	StrategyRouted     Strategy = "routed"
)

var (
	// ErrAlreadyRun is returned when Run is called on a used coordinator.
	ErrAlreadyRun = errors.New("restoration already run")

	ErrNoBrowser  = errors.New("browser is required")
	ErrNoCommands = errors.New("command executor is required")
)

// Router exposes the "routed" event.
type Router interface {
	Subscribe(l events.Listener) events.Subscription
	Unsubscribe(sub events.Subscription)
}

// TreeResolver yields the deep-link paths of the current navigation.
type TreeResolver interface {
	Paths(ctx context.Context) (router.Paths, error)
}

// ShellState reports whether a region of the application shell is empty.
type ShellState interface {
	IsEmpty(region string) bool
}

// Executor runs a named command and returns when its work is complete.
type Executor interface {
	Execute(ctx context.Context, id string, args commands.Args) error
}

// Options are the collaborators of a restoration run. Router, Tree and
// Shell are optional.
type Options struct {
	Browser  *filebrowser.Browser
	Commands Executor
	Router   Router
	Tree     TreeResolver
	Shell    ShellState
}

// Coordinator restores one browser once.
type Coordinator struct {
	opts     Options
	ran      atomic.Bool
	strategy atomic.Value
}

// New validates opts and creates a coordinator.
func New(opts Options) (*Coordinator, error) {
	if opts.Browser == nil {
		return nil, ErrNoBrowser
	}
	if opts.Commands == nil {
		return nil, ErrNoCommands
	}
	c := &Coordinator{opts: opts}
	c.strategy.Store(StrategyUnresolved)
	return c, nil
}

// Restore creates a coordinator and runs it.
func Restore(ctx context.Context, opts Options) error {
	c, err := New(opts)
	if err != nil {
		return err
	}
	return c.Run(ctx)
}

// Strategy returns the strategy chosen by the run so far.
func (c *Coordinator) Strategy() Strategy {
	return c.strategy.Load().(Strategy)
}

// Run restores the browser and blocks until it is settled or restoration
// failed. On failure the browser stays marked as restoring. If ctx ends
// while waiting for the router, the listener is disconnected and ctx.Err()
// returned.
func (c *Coordinator) Run(ctx context.Context) error {
	return <-c.Start(ctx)
}

// Start marks the browser as restoring and, when a router is present,
// connects the "routed" listener before returning. The rest of the run
// happens on its own goroutine; its result is delivered on the returned
// channel. Hosts that navigate right after starting restoration use Start
// so the first "routed" event cannot be missed.
func (c *Coordinator) Start(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	if c.ran.Swap(true) {
		errc <- ErrAlreadyRun
		return errc
	}

	b := c.opts.Browser
	ctx = logging.WithRunID(ctx, uuid.NewString())
	log := logging.WithContext(ctx).With(zap.String("browser", b.ID()), zap.String("drive", b.DriveName()))
	start := time.Now()

	b.SetState(filebrowser.Restoring)
	metrics.IncRestoring()
	log.Info("restoring file browser", zap.Bool("routed", c.opts.Router != nil))

	var route *oneShot
	if c.opts.Router != nil {
		route = &oneShot{router: c.opts.Router, done: make(chan struct{})}
		route.attach(c.opts.Router.Subscribe(route.fire))
	}

	go func() {
		err := c.complete(ctx, route)
		strategy := c.Strategy()
		metrics.RecordRestoration(string(strategy), time.Since(start), err == nil)
		if err != nil {
			log.Error("file browser restoration failed",
				zap.String("strategy", string(strategy)),
				zap.Error(err))
		} else {
			log.Info("file browser restored",
				zap.String("strategy", string(strategy)),
				zap.String("path", b.Model().Path()),
				zap.Duration("duration", time.Since(start)))
		}
		errc <- err
	}()
	return errc
}

// complete waits for the route if there is one, applies one strategy and
// settles the browser.
func (c *Coordinator) complete(ctx context.Context, route *oneShot) error {
	var paths router.Paths
	if route != nil {
		select {
		case <-route.done:
		case <-ctx.Done():
			route.detach()
			return ctx.Err()
		}
		if c.opts.Tree != nil {
			var err error
			paths, err = c.opts.Tree.Paths(ctx)
			if err != nil {
				return fmt.Errorf("resolve tree paths: %w", err)
			}
		}
	}

	var err error
	if paths.Empty() {
		c.strategy.Store(StrategyPlain)
		err = c.plainRestore(ctx)
	} else {
		c.strategy.Store(StrategyRouted)
		err = c.routedRestore(ctx, paths)
	}
	if err != nil {
		return err
	}

	c.opts.Browser.SetState(filebrowser.Settled)
	metrics.DecRestoring()
	c.launchIfEmpty(ctx)
	return nil
}

func (c *Coordinator) plainRestore(ctx context.Context) error {
	b := c.opts.Browser
	if err := b.Model().Restore(ctx, b.ID(), true); err != nil {
		return fmt.Errorf("restore %s: %w", b.ID(), err)
	}
	if err := b.Model().Refresh(ctx); err != nil {
		return fmt.Errorf("refresh %s: %w", b.ID(), err)
	}
	return nil
}

func (c *Coordinator) routedRestore(ctx context.Context, paths router.Paths) error {
	b := c.opts.Browser
	if err := b.Model().Restore(ctx, b.ID(), false); err != nil {
		return fmt.Errorf("restore %s: %w", b.ID(), err)
	}
	// File before browser; each open must finish before the next starts.
	for _, p := range []string{paths.File, paths.Browser} {
		if p == "" {
			continue
		}
		err := c.opts.Commands.Execute(ctx, commands.OpenPath, commands.Args{
			commands.ArgPath:            p,
			commands.ArgDontShowBrowser: true,
		})
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
	}
	return nil
}

func (c *Coordinator) launchIfEmpty(ctx context.Context) {
	if c.opts.Shell == nil || !c.opts.Shell.IsEmpty(shell.RegionMain) {
		return
	}
	if err := c.opts.Commands.Execute(ctx, commands.CreateLauncher, nil); err != nil {
		logging.WithContext(ctx).Warn("launcher creation failed", zap.Error(err))
	}
}

// oneShot is a "routed" listener that acts on the first emission only. It
// disconnects itself inside the emission that fires it.
type oneShot struct {
	router Router
	done   chan struct{}

	mu       sync.Mutex
	sub      events.Subscription
	attached bool
	fired    bool
}

func (o *oneShot) attach(sub events.Subscription) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fired {
		// Fired between Subscribe returning and attach.
		o.router.Unsubscribe(sub)
		return
	}
	o.sub = sub
	o.attached = true
}

func (o *oneShot) fire() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fired {
		return
	}
	o.fired = true
	if o.attached {
		o.router.Unsubscribe(o.sub)
		o.attached = false
	}
	close(o.done)
}

func (o *oneShot) detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attached {
		o.router.Unsubscribe(o.sub)
		o.attached = false
	}
}
