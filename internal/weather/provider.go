package weather

import (
	"context"
)

// Resolver turns a free-text place name into a Place. Implementations take
// the upstream's first match and report an empty result as *NotFoundError.
type Resolver interface {
	Resolve(ctx context.Context, query string) (Place, error)
}

// ForecastFetcher fetches current conditions and the daily summary for a
// pair of coordinates. Every call is a fresh upstream request.
type ForecastFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (Forecast, error)
}

// Locator reports the device position. Failures should be *GeolocationError.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// FixedLocator always reports the same coordinates.
func FixedLocator(c Coordinates) Locator {
	return LocatorFunc(func(context.Context) (Coordinates, error) {
		return c, nil
	})
}
