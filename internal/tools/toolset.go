// Package tools exposes the weather operations as named tools shared by the
// MCP server and the HTTP endpoint.
package tools

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/i474232898/weather-mcp/internal/render"
	"github.com/i474232898/weather-mcp/internal/weather"
)

// Tool names.
const (
	CurrentByCity         = "get_current_weather_by_city"
	CurrentByCoordinates  = "get_current_weather_by_coordinates"
	ForecastByCity        = "get_weather_forecast"
	ForecastByCoordinates = "get_forecast_by_coordinates"
	SearchCities          = "search_cities"
	CompareWeather        = "compare_weather"
)

// ErrUnknownTool is returned by Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Result is what every tool produces: rendered text plus the structured data
// it was rendered from.
type Result struct {
	Text string      `json:"text"`
	Data interface{} `json:"data"`
}

type tool struct {
	description string
	newArgs     func() interface{}
	run         func(ctx context.Context, args interface{}) (Result, error)
}

// Toolset binds the weather service and renderer to the tool names.
type Toolset struct {
	svc      *weather.Service
	renderer *render.Renderer
	logger   *zap.SugaredLogger
	validate *validator.Validate
	tools    map[string]tool
}

// New returns a Toolset. Text is rendered in the language of each request,
// falling back to the service default.
func New(svc *weather.Service, renderer *render.Renderer, logger *zap.SugaredLogger) *Toolset {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	ts := &Toolset{
		svc:      svc,
		renderer: renderer,
		logger:   logger,
		validate: v,
	}
	ts.tools = map[string]tool{
		CurrentByCity: {
			description: "Get the current weather for a city name",
			newArgs:     func() interface{} { return &cityArgs{} },
			run:         ts.currentByCity,
		},
		CurrentByCoordinates: {
			description: "Get the current weather for a latitude/longitude",
			newArgs:     func() interface{} { return &coordinatesArgs{} },
			run:         ts.currentByCoordinates,
		},
		ForecastByCity: {
			description: "Get a 1-5 day forecast for a city name",
			newArgs:     func() interface{} { return &cityForecastArgs{} },
			run:         ts.forecastByCity,
		},
		ForecastByCoordinates: {
			description: "Get a 1-5 day forecast for a latitude/longitude",
			newArgs:     func() interface{} { return &coordinatesForecastArgs{} },
			run:         ts.forecastByCoordinates,
		},
		SearchCities: {
			description: "Look up a city and its coordinates",
			newArgs:     func() interface{} { return &searchArgs{} },
			run:         ts.searchCities,
		},
		CompareWeather: {
			description: "Compare the current weather of 2-5 cities",
			newArgs:     func() interface{} { return &compareArgs{} },
			run:         ts.compare,
		},
	}
	return ts
}

// Names lists the registered tools in alphabetical order.
func (ts *Toolset) Names() []string {
	names := make([]string, 0, len(ts.tools))
	for name := range ts.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Description returns the human description of a tool.
func (ts *Toolset) Description(name string) string {
	return ts.tools[name].description
}

// Call decodes loosely typed arguments for the named tool, validates them and
// runs it.
func (ts *Toolset) Call(ctx context.Context, name string, args map[string]interface{}) (Result, error) {
	t, ok := ts.tools[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	target := t.newArgs()
	if err := ts.decode(args, target); err != nil {
		return Result{}, err
	}
	return ts.invoke(ctx, name, t, target)
}

// Render formats err for a caller speaking lang.
func (ts *Toolset) Render(lang string, err error) string {
	return ts.rendererFor(lang).FormatError(err)
}

func (ts *Toolset) invoke(ctx context.Context, name string, t tool, args interface{}) (Result, error) {
	if err := ts.check(args); err != nil {
		return Result{}, err
	}

	start := time.Now()
	res, err := t.run(ctx, args)
	if err != nil {
		ts.logger.Warnw("tool failed", "tool", name, "kind", weather.KindOf(err).String(), "error", err)
		return Result{}, err
	}
	ts.logger.Debugw("tool succeeded", "tool", name, "duration", time.Since(start))
	return res, nil
}

// decode fills target from args. Every non-pointer field is required and
// must be present, since zero is a meaningful latitude.
func (ts *Toolset) decode(args map[string]interface{}, target interface{}) error {
	t := reflect.TypeOf(target).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Ptr {
			continue
		}
		key := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if v, ok := args[key]; !ok || v == nil {
			return weather.ValidationError("missing required argument %q", key)
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return weather.ValidationError("invalid arguments: %v", err)
	}
	return nil
}

func (ts *Toolset) check(args interface{}) error {
	err := ts.validate.Struct(args)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return weather.ValidationError("invalid arguments: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return weather.ValidationError("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		ns := fe.Namespace()
		return fmt.Sprintf("%s is required", ns[strings.Index(ns, ".")+1:])
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s needs at least %s items", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s allows at most %s items", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func (ts *Toolset) rendererFor(lang string) *render.Renderer {
	if lang == "" {
		lang = ts.svc.DefaultLang()
	}
	return ts.renderer.WithLang(lang)
}

func (ts *Toolset) currentByCity(ctx context.Context, a interface{}) (Result, error) {
	args := a.(*cityArgs)
	w, err := ts.svc.CurrentByCity(ctx, args.City, str(args.Units), str(args.Lang))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: ts.rendererFor(str(args.Lang)).Render(render.KindCurrent, w), Data: w}, nil
}

func (ts *Toolset) currentByCoordinates(ctx context.Context, a interface{}) (Result, error) {
	args := a.(*coordinatesArgs)
	w, err := ts.svc.CurrentByCoordinates(ctx, args.Latitude, args.Longitude, str(args.Units), str(args.Lang))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: ts.rendererFor(str(args.Lang)).Render(render.KindCurrent, w), Data: w}, nil
}

func (ts *Toolset) forecastByCity(ctx context.Context, a interface{}) (Result, error) {
	args := a.(*cityForecastArgs)
	f, err := ts.svc.ForecastByCity(ctx, args.City, forecastDays(args.Days), str(args.Units), str(args.Lang))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: ts.rendererFor(str(args.Lang)).Render(render.KindForecast, f), Data: f}, nil
}

func (ts *Toolset) forecastByCoordinates(ctx context.Context, a interface{}) (Result, error) {
	args := a.(*coordinatesForecastArgs)
	f, err := ts.svc.ForecastByCoordinates(ctx, args.Latitude, args.Longitude, forecastDays(args.Days), str(args.Units), str(args.Lang))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: ts.rendererFor(str(args.Lang)).Render(render.KindForecast, f), Data: f}, nil
}

func (ts *Toolset) searchCities(ctx context.Context, a interface{}) (Result, error) {
	args := a.(*searchArgs)
	matches, err := ts.svc.SearchCities(ctx, args.Query)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: ts.rendererFor("").Cities(matches), Data: matches}, nil
}

func (ts *Toolset) compare(ctx context.Context, a interface{}) (Result, error) {
	args := a.(*compareArgs)
	items, err := ts.svc.Compare(ctx, args.Cities, str(args.Units), str(args.Lang))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: ts.rendererFor(str(args.Lang)).Comparison(items), Data: items}, nil
}

func forecastDays(p *int) int {
	if p == nil {
		return weather.DefaultForecastDays
	}
	return *p
}
