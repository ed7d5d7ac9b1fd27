package httpapi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/search"
	"github.com/i474232898/weather-dashboard/internal/units"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// SessionHeader carries the search session id in both directions.
const SessionHeader = "X-Search-Session"

var validate = validator.New()

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, dash *dashboard.Dashboard, sessions *search.Registry) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"unit":   dash.Unit(),
			"cities": dash.Cards(),
		})
	})

	v1.Get("/cities/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}
		detail := dash.Detail(city)
		if detail == nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
		}
		return c.JSON(detail)
	})

	v1.Delete("/cities/:city/error", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}
		dash.DismissError(city)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/cache", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"cities": dash.Cached()})
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		added, err := dash.AddCity(c.UserContext(), req.City)
		if err != nil {
			return toHTTPError(err)
		}
		status := fiber.StatusOK
		if added {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(fiber.Map{
			"city":  strings.TrimSpace(req.City),
			"added": added,
		})
	})

	v1.Put("/favorites", func(c *fiber.Ctx) error {
		var req reorderRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		if err := dash.Reorder(c.UserContext(), req.Cities); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"cities": req.Cities})
	})

	v1.Delete("/favorites/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}
		if err := dash.RemoveCity(c.UserContext(), city); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/favorites/:city/toggle", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}
		favorite, err := dash.ToggleFavorite(c.UserContext(), city)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"city": city, "favorite": favorite})
	})

	v1.Post("/selection/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}
		detail, res := dash.SelectCity(c.UserContext(), city)
		body := fiber.Map{
			"city":     city,
			"detail":   detail,
			"forecast": res.Outcome.String(),
		}
		if res.Err != nil {
			body["forecastError"] = res.Err.Error()
		}
		return c.JSON(body)
	})

	v1.Get("/selection", func(c *fiber.Ctx) error {
		city, ok := dash.Selected()
		if !ok {
			return c.JSON(fiber.Map{"city": nil})
		}
		return c.JSON(fiber.Map{"city": city, "detail": dash.Detail(city)})
	})

	v1.Delete("/selection", func(c *fiber.Ctx) error {
		dash.CloseDetail()
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(settingsBody{TemperatureUnit: dash.Unit().String()})
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsBody
		if err := bindBody(c, &req); err != nil {
			return err
		}
		u, err := units.ParseUnit(req.TemperatureUnit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := dash.SetUnit(c.UserContext(), u); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(settingsBody{TemperatureUnit: u.String()})
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		results := dash.RefreshAll(c.UserContext())
		out := make([]refreshResult, 0, len(results))
		for _, res := range results {
			out = append(out, newRefreshResult(res))
		}
		return c.JSON(fiber.Map{"results": out})
	})

	v1.Post("/refresh/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}
		return c.JSON(newRefreshResult(dash.Refresh(c.UserContext(), city)))
	})

	v1.Get("/search", func(c *fiber.Ctx) error {
		q := searchQuery{Query: c.Query("q")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		id, session := sessions.Session(utils.CopyString(c.Get(SessionHeader)))
		c.Set(SessionHeader, id)

		places, err := session.Submit(c.UserContext(), q.Query)
		if errors.Is(err, weather.ErrCancelled) {
			return c.JSON(fiber.Map{"query": q.Query, "superseded": true, "suggestions": []weather.Place{}})
		}
		if err != nil {
			return toHTTPError(err)
		}
		if places == nil {
			places = []weather.Place{}
		}
		return c.JSON(fiber.Map{"query": q.Query, "suggestions": places})
	})
}

type addCityRequest struct {
	City string `json:"city" validate:"required,max=100"`
}

type reorderRequest struct {
	Cities []string `json:"cities" validate:"required,dive,required"`
}

type settingsBody struct {
	TemperatureUnit string `json:"temperatureUnit" validate:"required,oneof=celsius fahrenheit"`
}

type searchQuery struct {
	Query string `validate:"max=100"`
}

type refreshResult struct {
	City    string `json:"city,omitempty"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func newRefreshResult(res weather.FetchResult[weather.WeatherSnapshot]) refreshResult {
	out := refreshResult{Outcome: res.Outcome.String()}
	if res.Outcome == weather.Succeeded {
		out.City = res.Value.Name
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

func bindBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// cityParam returns the unescaped :city segment. Params are backed by the
// pooled request buffer, and city keys outlive the request.
func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(utils.CopyString(c.Params("city")))
	if err != nil || strings.TrimSpace(city) == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid city")
	}
	return city, nil
}

func toHTTPError(err error) error {
	var (
		ue *weather.UpstreamError
		me *weather.MalformedResponseError
	)
	switch {
	case errors.Is(err, dashboard.ErrBlankCity),
		errors.Is(err, favorites.ErrNotPermutation),
		errors.Is(err, units.ErrInvalidUnit):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &ue), errors.As(err, &me):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
