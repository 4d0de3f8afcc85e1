// Package router resolves navigation URLs and notifies listeners once each
// navigation has been routed.
package router

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/events"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// Location is a parsed navigation target.
type Location struct {
	Path  string
	Query url.Values
	Raw   string
}

// RouteHandler handles a navigation whose path matched its pattern.
// match holds the regexp submatches.
type RouteHandler func(ctx context.Context, loc Location, match []string) error

type rule struct {
	pattern *regexp.Regexp
	handler RouteHandler
}

// Router matches navigations against registered rules and emits "routed"
// after each navigation has been handled.
type Router struct {
	mu     sync.RWMutex
	rules  []rule
	routed *events.Signal
}

// New creates a router with no rules.
func New() *Router {
	return &Router{routed: events.NewSignal()}
}

// Register adds a rule. Rules run in registration order.
func (r *Router) Register(pattern *regexp.Regexp, handler RouteHandler) {
	r.mu.Lock()
	r.rules = append(r.rules, rule{pattern: pattern, handler: handler})
	r.mu.Unlock()
}

// Subscribe connects a listener to the "routed" event.
func (r *Router) Subscribe(l events.Listener) events.Subscription {
	return r.routed.Connect(l)
}

// Unsubscribe disconnects a "routed" listener.
func (r *Router) Unsubscribe(sub events.Subscription) {
	r.routed.Disconnect(sub)
}

// Listeners returns the number of connected "routed" listeners.
func (r *Router) Listeners() int {
	return r.routed.Count()
}

// Close disconnects every "routed" listener.
func (r *Router) Close() {
	r.routed.DisconnectAll()
}

// Navigate parses rawURL, runs every matching rule and then emits "routed".
// A failing rule is logged; "routed" is emitted regardless so that waiting
// listeners are never stranded.
func (r *Router) Navigate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	loc := Location{Path: u.Path, Query: u.Query(), Raw: rawURL}

	r.mu.RLock()
	rules := make([]rule, len(r.rules))
	copy(rules, r.rules)
	r.mu.RUnlock()

	log := logging.WithContext(ctx)
	var firstErr error
	for _, ru := range rules {
		m := ru.pattern.FindStringSubmatch(loc.Path)
		if m == nil {
			continue
		}
		if err := ru.handler(ctx, loc, m); err != nil {
			log.Error("route handler failed",
				zap.String("url", rawURL),
				zap.String("pattern", ru.pattern.String()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	metrics.RecordNavigation()
	log.Debug("routed", zap.String("url", rawURL))
	r.routed.Emit()
	return firstErr
}
