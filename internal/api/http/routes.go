package httpapi

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-mcp/internal/tools"
	"github.com/i474232898/weather-mcp/internal/weather"
)

// Deps is what the HTTP surface needs from the rest of the process.
type Deps struct {
	Tools   *tools.Toolset
	Service *weather.Service
	// KeyConfigured is false when no upstream API key is set; tool calls then
	// fail with a configuration error instead of reaching the upstream.
	KeyConfigured bool
	Version       string
	Logger        *zap.SugaredLogger
}

// NewApp returns a Fiber app with the middleware and routes installed.
func NewApp(deps Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-mcp",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger(deps.Logger))

	RegisterRoutes(app, deps)
	return app
}

// ErrorHandler renders every error as {success:false, error}. Non-fiber
// errors are 500s.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Weather MCP Server is running",
			"version":   deps.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"tools":     deps.Tools.Names(),
			"cache":     deps.Service.CacheStats(),
		})
	})

	app.Post("/", func(c *fiber.Ctx) error {
		var req toolRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
		}
		if req.Tool == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing tool name")
		}
		if !deps.KeyConfigured {
			return fiber.NewError(fiber.StatusInternalServerError, "server configuration error")
		}

		res, err := deps.Tools.Call(c.UserContext(), req.Tool, req.Arguments)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
				"kind":    kindFor(err),
				"tool":    req.Tool,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"tool":    req.Tool,
			"result":  res,
		})
	})

	app.All("/", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusMethodNotAllowed, "method not allowed")
	})
}

type toolRequest struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// statusFor maps a tool failure to an HTTP status. Caller mistakes are 400s,
// everything on the upstream side is a 500.
func statusFor(err error) int {
	if errors.Is(err, tools.ErrUnknownTool) {
		return fiber.StatusBadRequest
	}
	switch weather.KindOf(err) {
	case weather.KindValidation, weather.KindNotFound:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func kindFor(err error) string {
	if errors.Is(err, tools.ErrUnknownTool) {
		return "unknown_tool"
	}
	return weather.KindOf(err).String()
}

// requestLogger tags each request with an X-Request-ID and logs its outcome.
func requestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("requestid", id)

		start := time.Now()
		if err := c.Next(); err != nil {
			// Resolve the status now so it can be logged.
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.Infow("http request",
			"request_id", id,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return nil
	}
}
