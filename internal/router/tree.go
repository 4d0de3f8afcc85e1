package router

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/fruitsalade/drivesbrowser/internal/events"
)

// BrowserPathParam is the query parameter carrying a deep-linked browser path.
const BrowserPathParam = "file-browser-path"

// TreePattern matches tree URLs ("/tree/<path>" or "/lab/tree/<path>").
var TreePattern = regexp.MustCompile(`^(?:/lab)?/tree(?:/(.*))?$`)

// Paths is the outcome of resolving a tree URL. Empty fields are absent.
type Paths struct {
	File    string `json:"file,omitempty"`
	Browser string `json:"browser,omitempty"`
}

// Empty reports whether neither path is present.
func (p Paths) Empty() bool {
	return p.File == "" && p.Browser == ""
}

// TreeResolver turns the first navigation into a Paths value. It settles
// exactly once: with the tree paths if the first navigation was a tree URL,
// otherwise with empty Paths.
type TreeResolver struct {
	router *Router
	once   sync.Once
	done   chan struct{}
	paths  Paths

	mu       sync.Mutex
	sub      events.Subscription
	attached bool
	fired    bool
}

// NewTreeResolver registers the tree rule on r and waits for its first
// navigation.
func NewTreeResolver(r *Router) *TreeResolver {
	t := &TreeResolver{
		router: r,
		done:   make(chan struct{}),
	}
	r.Register(TreePattern, t.handleTree)
	sub := r.Subscribe(t.onRouted)

	t.mu.Lock()
	if t.fired {
		// A navigation on another goroutine got here first.
		r.Unsubscribe(sub)
	} else {
		t.sub = sub
		t.attached = true
	}
	t.mu.Unlock()
	return t
}

func (t *TreeResolver) onRouted() {
	t.mu.Lock()
	t.fired = true
	if t.attached {
		t.router.Unsubscribe(t.sub)
		t.attached = false
	}
	t.mu.Unlock()
	t.settle(Paths{})
}

func (t *TreeResolver) handleTree(_ context.Context, loc Location, match []string) error {
	var p Paths
	if len(match) > 1 && match[1] != "" {
		file, err := url.PathUnescape(match[1])
		if err != nil {
			return err
		}
		p.File = strings.TrimSuffix(file, "/")
	}
	p.Browser = loc.Query.Get(BrowserPathParam)
	t.settle(p)
	return nil
}

func (t *TreeResolver) settle(p Paths) {
	t.once.Do(func() {
		t.paths = p
		close(t.done)
	})
}

// Paths blocks until the resolver has settled or ctx is done.
func (t *TreeResolver) Paths(ctx context.Context) (Paths, error) {
	select {
	case <-t.done:
		return t.paths, nil
	case <-ctx.Done():
		return Paths{}, ctx.Err()
	}
}
