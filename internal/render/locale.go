package render

import (
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"

	"github.com/i474232898/weather-mcp/internal/common"
)

type locale struct {
	// tr supplies CLDR weekday names.
	tr              locales.Translator
	today, tomorrow string
	directions      [16]string

	temperature, feelsLike, weather, humidity string
	wind, pressure, visibility                string
	sunrise, sunset, coordinates              string

	dateTimeLayout, dateLayout, timeLayout string

	forecastTitle   func(days int) string
	compareTitle    func(n int) string
	foundCity       string
	foundCities     func(n int) string
	unknownDataKind string

	errAuth, errNotFound, errRateLimit, errNetwork string
	errUpstream                                    func(status int, msg string) string
}

var zhCN = locale{
	today:    "今天",
	tomorrow: "明天",
	tr:       zh.New(),
	directions: [16]string{
		"北", "东北偏北", "东北", "东北偏东",
		"东", "东南偏东", "东南", "东南偏南",
		"南", "西南偏南", "西南", "西南偏西",
		"西", "西北偏西", "西北", "西北偏北",
	},
	temperature: "温度",
	feelsLike:   "体感",
	weather:     "天气",
	humidity:    "湿度",
	wind:        "风速",
	pressure:    "气压",
	visibility:  "能见度",
	sunrise:     "日出",
	sunset:      "日落",
	coordinates: "坐标",

	dateTimeLayout: "2006/1/2 15:04:05",
	dateLayout:     "2006/1/2",
	timeLayout:     "15:04:05",

	forecastTitle:   func(days int) string { return itoa(days) + "天天气预报" },
	compareTitle:    func(n int) string { return itoa(n) + "个城市天气对比" },
	foundCity:       "找到城市",
	foundCities:     func(n int) string { return "找到 " + itoa(n) + " 个城市" },
	unknownDataKind: "未知的数据类型",

	errAuth:      "API密钥无效，请检查配置",
	errNotFound:  "未找到指定的城市或位置",
	errRateLimit: "API调用次数超限，请稍后重试",
	errNetwork:   "网络连接失败，请检查网络设置",
	errUpstream: func(status int, msg string) string {
		if status == 0 {
			return "API错误: " + msg
		}
		return "API错误 (" + itoa(status) + "): " + msg
	},
}

var enUS = locale{
	today:    "Today",
	tomorrow: "Tomorrow",
	tr:       en.New(),
	directions: [16]string{
		"N", "NNE", "NE", "ENE",
		"E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW",
		"W", "WNW", "NW", "NNW",
	},
	temperature: "Temperature",
	feelsLike:   "feels like",
	weather:     "Weather",
	humidity:    "Humidity",
	wind:        "Wind",
	pressure:    "Pressure",
	visibility:  "Visibility",
	sunrise:     "Sunrise",
	sunset:      "Sunset",
	coordinates: "Coordinates",

	dateTimeLayout: "1/2/2006, 3:04:05 PM",
	dateLayout:     "1/2/2006",
	timeLayout:     "3:04:05 PM",

	forecastTitle:   func(days int) string { return itoa(days) + "-day forecast" },
	compareTitle:    func(n int) string { return "Weather in " + itoa(n) + " cities" },
	foundCity:       "Found city",
	foundCities:     func(n int) string { return "Found " + itoa(n) + " cities" },
	unknownDataKind: "unknown data kind",

	errAuth:      "Invalid API key, check the server configuration",
	errNotFound:  "The requested city or location was not found",
	errRateLimit: "API rate limit exceeded, try again later",
	errNetwork:   "Network request failed, check connectivity",
	errUpstream: func(status int, msg string) string {
		if status == 0 {
			return "API error: " + msg
		}
		return "API error (" + itoa(status) + "): " + msg
	},
}

// localeFor picks Simplified Chinese for zh tags and English otherwise.
func localeFor(lang string) locale {
	if common.HasAny(strings.ToLower(lang), "zh") {
		return zhCN
	}
	return enUS
}

func (l locale) weekday(d time.Weekday) string {
	return l.tr.WeekdayWide(d)
}

// windDirection names the 16-point compass sector for degrees.
func (l locale) windDirection(degrees int) string {
	idx := common.Round(float64(degrees)/22.5) % 16
	if idx < 0 {
		idx += 16
	}
	return l.directions[idx]
}
