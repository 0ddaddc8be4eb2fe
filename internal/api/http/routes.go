package httpapi

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-lookup/internal/theme"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// colorSchemeHint is the client hint carrying the device's light/dark preference.
const colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

const locateFailed = "Failed to get location"

var validate = validator.New()

//go:embed templates/index.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type handler struct {
	service      *weather.Service
	themes       *theme.Controller
	defaultQuery string
	logger       *slog.Logger
}

// RegisterRoutes wires the page, its form actions and the JSON API into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, themes *theme.Controller, defaultQuery string, logger *slog.Logger) {
	h := &handler{
		service:      service,
		themes:       themes,
		defaultQuery: defaultQuery,
		logger:       logger,
	}

	app.Get("/", h.index)
	app.Post("/search", h.search)
	app.Post("/locate", h.locate)
	app.Post("/theme", h.toggleTheme)

	v1 := app.Group("/api/v1")
	v1.Get("/state", h.apiState)
	v1.Post("/search", h.apiSearch)
	v1.Post("/locate", h.apiLocate)
}

func (h *handler) index(c *fiber.Ctx) error {
	c.Set("Accept-CH", colorSchemeHint)
	c.Set("Critical-CH", colorSchemeHint)
	c.Vary(colorSchemeHint)

	t := h.themes.Current(c.UserContext(), c.Get(colorSchemeHint))

	query := h.service.LastQuery()
	if query == "" {
		query = h.defaultQuery
	}

	c.Type("html", "utf-8")
	return page.Execute(c, newPageView(h.service.State(), t, query))
}

func (h *handler) search(c *fiber.Ctx) error {
	// Lookup errors are already in the snapshot the page renders.
	_ = h.service.Submit(chainContext(c), formValue(c, "query"))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *handler) locate(c *fiber.Ctx) error {
	req := locateRequest{
		Error:       formValue(c, "error"),
		Unsupported: c.FormValue("unsupported") != "",
		Latitude:    parseCoord(formValue(c, "latitude")),
		Longitude:   parseCoord(formValue(c, "longitude")),
	}
	_ = h.service.UseLocation(chainContext(c), req.locator())
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *handler) toggleTheme(c *fiber.Ctx) error {
	if _, err := h.themes.Toggle(c.UserContext(), c.Get(colorSchemeHint)); err != nil {
		h.logger.Warn("theme toggle failed", "error", err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *handler) apiState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

type searchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

func (h *handler) apiSearch(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	_ = h.service.Submit(chainContext(c), req.Query)
	return c.JSON(h.service.State())
}

func (h *handler) apiLocate(c *fiber.Ctx) error {
	var req locateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !req.Unsupported && req.Error == "" {
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	_ = h.service.UseLocation(chainContext(c), req.locator())
	return c.JSON(h.service.State())
}

// locateRequest is what the page reports after asking the browser for its
// position: either coordinates, an error message, or that geolocation is missing.
type locateRequest struct {
	Latitude    *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Error       string   `json:"error"`
	Unsupported bool     `json:"unsupported"`
}

// locator adapts the report to weather.Locator. Unsupported yields nil.
func (r locateRequest) locator() weather.Locator {
	if r.Unsupported {
		return nil
	}
	return weather.LocatorFunc(func(context.Context) (weather.Coordinates, error) {
		if r.Error != "" {
			return weather.Coordinates{}, &weather.GeolocationError{Message: r.Error}
		}
		if err := validate.Struct(r); err != nil {
			return weather.Coordinates{}, &weather.GeolocationError{Message: locateFailed}
		}
		return weather.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}, nil
	})
}

// formValue copies the field out of the request buffer, which Fiber reuses
// once the handler returns.
func formValue(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.FormValue(key))
}

func parseCoord(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// chainContext detaches the lookup from the request so a client hanging up
// does not abort a chain that is already under way.
func chainContext(c *fiber.Ctx) context.Context {
	return context.WithoutCancel(c.UserContext())
}
