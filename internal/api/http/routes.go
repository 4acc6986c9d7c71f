// Package httpapi exposes the chat-facing HTTP surface.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-advisor/internal/geocode"
	"github.com/i474232898/weather-advisor/internal/weather"
)

var validate = newValidator()

// newValidator reports field names by their json tag so validation messages
// match what the client actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Advisor is the question-answering pipeline the routes delegate to.
type Advisor interface {
	Answer(ctx context.Context, question string, loc weather.Location, sessionID string) (string, error)
	ClearSession(sessionID string)
}

// Locator resolves free-text place queries.
type Locator interface {
	Search(ctx context.Context, query string) (geocode.Envelope, error)
}

// askRequest is the body of POST /weather.
type askRequest struct {
	Question string `json:"question" validate:"required"`
	Location struct {
		City    string   `json:"city" validate:"required"`
		Country string   `json:"country"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
	} `json:"location"`
	SessionID string `json:"sessionId" validate:"required"`
}

// clearRequest is the body of POST /clear-memory.
type clearRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ErrorHandler renders every handler error as a JSON envelope with the
// matching status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, advisor Advisor, locator Locator) {
	app.Post("/weather", func(c *fiber.Ctx) error {
		var req askRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
		}

		loc := weather.Location{
			City:    req.Location.City,
			Country: req.Location.Country,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		}
		if loc.Country == "" {
			loc.Country = "United States"
		}

		answer, err := advisor.Answer(c.Context(), req.Question, loc, req.SessionID)
		if err != nil {
			// Never leak upstream detail or credentials to the client.
			log.Printf("ERROR: answering weather question for %s: %v", loc.Key(), err)
			return fiber.NewError(fiber.StatusInternalServerError, "weather data unavailable")
		}

		return c.JSON(fiber.Map{"answer": answer})
	})

	app.Get("/locations", func(c *fiber.Ctx) error {
		query := c.Query("q")

		envelope, err := locator.Search(c.Context(), query)
		if err != nil {
			switch {
			case errors.Is(err, geocode.ErrQueryTooShort):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, geocode.ErrMissingAPIKey):
				log.Printf("ERROR: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "configuration error")
			default:
				log.Printf("ERROR: location search failed for %q: %v", query, err)
				return fiber.NewError(fiber.StatusInternalServerError, "location service unavailable")
			}
		}

		return c.JSON(envelope)
	})

	app.Post("/clear-memory", func(c *fiber.Ctx) error {
		var req clearRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
		}

		advisor.ClearSession(req.SessionID)
		return c.JSON(fiber.Map{"success": true})
	})
}

// validationMessage names the first missing field rather than echoing the
// validator's internal description.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("missing required field: %s", verrs[0].Field())
	}
	return err.Error()
}
