package tools

import (
	"context"

	"github.com/localrivet/gomcp/server"
)

// Registrar is the part of a gomcp server the tools need.
type Registrar interface {
	Tool(name, description string, handler interface{}, annotations ...map[string]interface{}) server.Server
}

// RegisterMCP registers every tool on srv. Tool failures are reported as a
// text payload flagged isError, never as protocol errors.
func RegisterMCP(srv Registrar, ts *Toolset) {
	srv.Tool(CurrentByCity, ts.Description(CurrentByCity), mcpHandler[cityArgs](ts, CurrentByCity))
	srv.Tool(CurrentByCoordinates, ts.Description(CurrentByCoordinates), mcpHandler[coordinatesArgs](ts, CurrentByCoordinates))
	srv.Tool(ForecastByCity, ts.Description(ForecastByCity), mcpHandler[cityForecastArgs](ts, ForecastByCity))
	srv.Tool(ForecastByCoordinates, ts.Description(ForecastByCoordinates), mcpHandler[coordinatesForecastArgs](ts, ForecastByCoordinates))
	srv.Tool(SearchCities, ts.Description(SearchCities), mcpHandler[searchArgs](ts, SearchCities))
	srv.Tool(CompareWeather, ts.Description(CompareWeather), mcpHandler[compareArgs](ts, CompareWeather))
}

func mcpHandler[A any](ts *Toolset, name string) func(*server.Context, A) (interface{}, error) {
	return func(c *server.Context, args A) (interface{}, error) {
		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := ts.invoke(ctx, name, ts.tools[name], &args)
		if err != nil {
			return content(ts.Render(langOf(&args), err), true), nil
		}
		return content(res.Text, false), nil
	}
}

func content(text string, isError bool) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"isError": isError,
	}
}

// requestContext derives a context that is canceled with the MCP request.
func requestContext(c *server.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	if c == nil {
		return ctx, cancel
	}

	done := c.Done()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func langOf(args interface{}) string {
	switch a := args.(type) {
	case *cityArgs:
		return str(a.Lang)
	case *coordinatesArgs:
		return str(a.Lang)
	case *cityForecastArgs:
		return str(a.Lang)
	case *coordinatesForecastArgs:
		return str(a.Lang)
	case *compareArgs:
		return str(a.Lang)
	}
	return ""
}
