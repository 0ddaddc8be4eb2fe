// Package theme owns the light/dark display preference.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/i474232898/weather-lookup/internal/observability"
)

// Theme is one of Light or Dark.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default applies when neither a stored value nor a device hint exists.
const Default = Dark

// StorageKey is the single preference key the theme is persisted under.
const StorageKey = "wx-theme"

// Class is both the persisted literal and the CSS class on the page root.
func (t Theme) Class() string {
	return "theme-" + string(t)
}

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Parse accepts the persisted literals "theme-light" and "theme-dark".
func Parse(stored string) (Theme, bool) {
	switch stored {
	case Light.Class():
		return Light, true
	case Dark.Class():
		return Dark, true
	default:
		return "", false
	}
}

// ParseHint reads a device colour-scheme preference such as the value of the
// Sec-CH-Prefers-Color-Scheme header. Quotes are allowed.
func ParseHint(h string) (Theme, bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`)) {
	case "light":
		return Light, true
	case "dark":
		return Dark, true
	default:
		return "", false
	}
}

// Store persists string preferences.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Controller resolves the theme once and keeps it in step with the store.
type Controller struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	current Theme
	loaded  bool
}

func NewController(store Store, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Current returns the active theme. The first call decides it: stored value,
// then hint, then Default; the decision is written back to the store.
// Later hints are ignored.
func (c *Controller) Current(ctx context.Context, hint string) Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(ctx, hint)
	return c.current
}

// Toggle flips the theme and persists it before returning. If the write
// fails the theme is left unchanged.
func (c *Controller) Toggle(ctx context.Context, hint string) (Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(ctx, hint)

	next := c.current.Toggled()
	if err := c.store.Set(ctx, StorageKey, next.Class()); err != nil {
		return c.current, fmt.Errorf("persist theme: %w", err)
	}
	c.current = next
	if c.metrics != nil {
		c.metrics.ThemeToggles.Inc()
	}
	c.logger.Debug("theme toggled", "theme", next)
	return next, nil
}

func (c *Controller) loadLocked(ctx context.Context, hint string) {
	if c.loaded {
		return
	}
	c.loaded = true

	stored, ok, err := c.store.Get(ctx, StorageKey)
	if err != nil {
		c.logger.Warn("reading stored theme failed", "error", err)
	}
	if t, valid := Parse(stored); ok && valid {
		c.current = t
		return
	}

	c.current = Default
	if t, valid := ParseHint(hint); valid {
		c.current = t
	}
	if err := c.store.Set(ctx, StorageKey, c.current.Class()); err != nil {
		c.logger.Warn("persisting initial theme failed", "error", err)
	}
}
