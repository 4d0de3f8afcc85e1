package router

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigateRunsRulesThenEmits(t *testing.T) {
	r := New()
	var order []string
	r.Register(regexp.MustCompile(`^/lab`), func(_ context.Context, loc Location, _ []string) error {
		order = append(order, "rule:"+loc.Path)
		return nil
	})
	r.Register(regexp.MustCompile(`^/other`), func(context.Context, Location, []string) error {
		order = append(order, "other")
		return nil
	})
	r.Subscribe(func() { order = append(order, "routed") })

	require.NoError(t, r.Navigate(context.Background(), "/lab/workspaces"))
	assert.Equal(t, []string{"rule:/lab/workspaces", "routed"}, order)
}

func TestNavigateEmitsEveryTime(t *testing.T) {
	r := New()
	count := 0
	sub := r.Subscribe(func() { count++ })

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Navigate(context.Background(), "/lab"))
	}
	assert.Equal(t, 3, count)

	r.Unsubscribe(sub)
	require.NoError(t, r.Navigate(context.Background(), "/lab"))
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, r.Listeners())
}

func TestNavigateRuleFailureStillEmits(t *testing.T) {
	r := New()
	r.Register(regexp.MustCompile(`.*`), func(context.Context, Location, []string) error {
		return errors.New("bad route")
	})
	routed := false
	r.Subscribe(func() { routed = true })

	err := r.Navigate(context.Background(), "/lab")
	assert.EqualError(t, err, "bad route")
	assert.True(t, routed)
}

func TestNavigateBadURL(t *testing.T) {
	r := New()
	routed := false
	r.Subscribe(func() { routed = true })

	assert.Error(t, r.Navigate(context.Background(), "%zz"))
	assert.False(t, routed)
}

func TestCloseDisconnectsListeners(t *testing.T) {
	r := New()
	r.Subscribe(func() {})
	r.Subscribe(func() {})
	r.Close()
	assert.Equal(t, 0, r.Listeners())
}

func TestTreeResolverFile(t *testing.T) {
	r := New()
	tree := NewTreeResolver(r)

	require.NoError(t, r.Navigate(context.Background(), "/lab/tree/docs/my%20notes.md"))

	paths, err := tree.Paths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Paths{File: "docs/my notes.md"}, paths)
	assert.Equal(t, 0, r.Listeners(), "resolver disconnects after the first navigation")
}

func TestTreeResolverBrowserQuery(t *testing.T) {
	r := New()
	tree := NewTreeResolver(r)

	require.NoError(t, r.Navigate(context.Background(), "/tree/a.txt?file-browser-path=S3TestDrive:data"))

	paths, err := tree.Paths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Paths{File: "a.txt", Browser: "S3TestDrive:data"}, paths)
}

func TestTreeResolverBareTree(t *testing.T) {
	r := New()
	tree := NewTreeResolver(r)

	require.NoError(t, r.Navigate(context.Background(), "/lab/tree"))

	paths, err := tree.Paths(context.Background())
	require.NoError(t, err)
	assert.True(t, paths.Empty())
}

func TestTreeResolverNonTreeNavigation(t *testing.T) {
	r := New()
	tree := NewTreeResolver(r)

	require.NoError(t, r.Navigate(context.Background(), "/lab/workspaces/auto-x"))
	require.NoError(t, r.Navigate(context.Background(), "/lab/tree/late.txt"))

	paths, err := tree.Paths(context.Background())
	require.NoError(t, err)
	assert.True(t, paths.Empty(), "resolver settles on the first navigation only")
}

func TestTreeResolverPathsWaits(t *testing.T) {
	r := New()
	tree := NewTreeResolver(r)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tree.Paths(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan Paths, 1)
	go func() {
		p, _ := tree.Paths(context.Background())
		done <- p
	}()
	require.NoError(t, r.Navigate(context.Background(), "/lab/tree/x.txt"))

	select {
	case p := <-done:
		assert.Equal(t, "x.txt", p.File)
	case <-time.After(5 * time.Second):
		t.Fatal("Paths did not return after navigation")
	}
}

func TestTreeResolverConcurrentNavigation(t *testing.T) {
	r := New()
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = r.Navigate(ctx, "/lab/tree/x.txt")
			}
		}
	}()

	tree := NewTreeResolver(r)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := tree.Paths(waitCtx)
	close(stop)
	wg.Wait()
	require.NoError(t, err)

	require.NoError(t, r.Navigate(ctx, "/lab"))
	assert.Equal(t, 0, r.Listeners())
}
