package tools

// Argument structs double as the MCP input schema: non-pointer fields are
// required, pointer fields optional. Coordinate ranges are checked by the
// weather service so every entry point reports them the same way.

type cityArgs struct {
	City  string  `json:"city" validate:"required" description:"City name, Chinese or English"`
	Units *string `json:"units,omitempty" validate:"omitempty,oneof=metric imperial kelvin" enum:"metric,imperial,kelvin" description:"Temperature units"`
	Lang  *string `json:"lang,omitempty" description:"Language code such as zh_cn or en"`
}

type coordinatesArgs struct {
	Latitude  float64 `json:"latitude" description:"Latitude, -90 to 90"`
	Longitude float64 `json:"longitude" description:"Longitude, -180 to 180"`
	Units     *string `json:"units,omitempty" validate:"omitempty,oneof=metric imperial kelvin" enum:"metric,imperial,kelvin" description:"Temperature units"`
	Lang      *string `json:"lang,omitempty" description:"Language code"`
}

type cityForecastArgs struct {
	City  string  `json:"city" validate:"required" description:"City name"`
	Days  *int    `json:"days,omitempty" description:"Forecast days, 1-5"`
	Units *string `json:"units,omitempty" validate:"omitempty,oneof=metric imperial kelvin" enum:"metric,imperial,kelvin" description:"Temperature units"`
	Lang  *string `json:"lang,omitempty" description:"Language code"`
}

type coordinatesForecastArgs struct {
	Latitude  float64 `json:"latitude" description:"Latitude"`
	Longitude float64 `json:"longitude" description:"Longitude"`
	Days      *int    `json:"days,omitempty" description:"Forecast days, 1-5"`
	Units     *string `json:"units,omitempty" validate:"omitempty,oneof=metric imperial kelvin" enum:"metric,imperial,kelvin" description:"Temperature units"`
	Lang      *string `json:"lang,omitempty" description:"Language code"`
}

type searchArgs struct {
	Query string `json:"query" validate:"required" description:"City name to look up"`
}

type compareArgs struct {
	Cities []string `json:"cities" validate:"required,min=2,max=5,dive,required" description:"Cities to compare (2-5)"`
	Units  *string  `json:"units,omitempty" validate:"omitempty,oneof=metric imperial kelvin" enum:"metric,imperial,kelvin" description:"Temperature units"`
	Lang   *string  `json:"lang,omitempty" description:"Language code"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
