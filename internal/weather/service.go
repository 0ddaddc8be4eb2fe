package weather

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-lookup/internal/observability"
)

const (
	triggerQuery    = "query"
	triggerLocation = "location"
)

// Service runs lookup chains and owns the single current-result snapshot.
//
// Chains are not fenced: two overlapping lookups both run to completion and
// whichever finishes last overwrites the snapshot. The mutex only keeps the
// snapshot swap itself race-free.
type Service struct {
	resolver Resolver
	fetcher  ForecastFetcher
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu    sync.Mutex
	state State
	query string
	last  lastTrigger
}

type lastTrigger struct {
	query  string
	coords *Coordinates
}

// NewService creates a new Service. A nil clock means the real clock; nil
// metrics disables counting.
func NewService(resolver Resolver, fetcher ForecastFetcher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		resolver: resolver,
		fetcher:  fetcher,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// State returns the current snapshot.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastQuery returns the most recent non-blank query. Device-location
// lookups leave it alone.
func (s *Service) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Service) apply(transition func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = transition(s.state)
	return s.state
}

// Submit looks up weather for a place name: resolve, then fetch. Blank
// queries are ignored without touching the snapshot or the upstreams. The
// returned error is the one surfaced to the user, if any.
func (s *Service) Submit(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	fetchID := uuid.NewString()
	log := s.logger.With("fetch_id", fetchID, "trigger", triggerQuery, "query", query)

	s.mu.Lock()
	s.query = query
	s.last = lastTrigger{query: query}
	s.mu.Unlock()

	s.apply(Begin)
	log.Debug("lookup started")

	place, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return s.fail(log, triggerQuery, err)
	}
	log.Debug("place resolved", "name", place.Name, "country", place.Country, "lat", place.Latitude, "lon", place.Longitude)

	return s.fetchFor(ctx, log, triggerQuery, place)
}

// UseLocation looks up weather at the device position, skipping the resolver.
// A nil locator stands for a device without geolocation: the lookup fails
// immediately without entering Loading.
func (s *Service) UseLocation(ctx context.Context, locator Locator) error {
	fetchID := uuid.NewString()
	log := s.logger.With("fetch_id", fetchID, "trigger", triggerLocation)

	if locator == nil {
		return s.fail(log, triggerLocation, ErrGeolocationUnsupported)
	}

	s.apply(Begin)
	log.Debug("lookup started")

	coords, err := locator.Locate(ctx)
	if err != nil {
		return s.fail(log, triggerLocation, err)
	}

	s.mu.Lock()
	s.last = lastTrigger{coords: &coords}
	s.mu.Unlock()

	return s.fetchFor(ctx, log, triggerLocation, DevicePlace(coords))
}

// Refresh repeats the most recent trigger. It is a no-op before the first lookup.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	switch {
	case last.coords != nil:
		return s.UseLocation(ctx, FixedLocator(*last.coords))
	case last.query != "":
		return s.Submit(ctx, last.query)
	default:
		return nil
	}
}

func (s *Service) fetchFor(ctx context.Context, log *slog.Logger, trigger string, place Place) error {
	forecast, err := s.fetcher.Fetch(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return s.fail(log, trigger, err)
	}

	now := s.clock.Now()
	s.apply(func(st State) State { return Succeed(st, place, forecast, now) })
	s.countLookup(trigger, "success")
	log.Info("lookup succeeded",
		"place", place.Name,
		"weather_code", forecast.Current.WeatherCode,
		"days", len(forecast.Daily.Time),
	)
	return nil
}

func (s *Service) fail(log *slog.Logger, trigger string, err error) error {
	msg := UserMessage(err)
	s.apply(func(st State) State { return Fail(st, msg) })
	s.countLookup(trigger, outcomeOf(err))
	log.Warn("lookup failed", "error", err, "cause", errors.Unwrap(err))
	return err
}

func (s *Service) countLookup(trigger, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Lookups.WithLabelValues(trigger, outcome).Inc()
}

func outcomeOf(err error) string {
	var (
		notFound *NotFoundError
		network  *NetworkError
		geo      *GeolocationError
	)
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &network):
		return "network"
	case errors.As(err, &geo):
		return "geolocation"
	default:
		return "error"
	}
}
