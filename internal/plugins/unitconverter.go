// SPDX-License-Identifier: MIT
package plugins

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
)

var unitPattern = regexp.MustCompile(`(?i)^(\d+\.?\d*)\s*([a-zA-Z°]+)\s+(?:to|in|as)\s+([a-zA-Z°]+)$`)

// UnitConverterPlugin converts a value between a fixed set of unit pairs
// (length, mass, temperature, volume, area, speed, data) as an instant
// answer.
//
// Grounded on original_source/src/plugins/unit_converter.rs.
type UnitConverterPlugin struct {
	*Base
}

// NewUnitConverterPlugin returns the unit-converter instant-answer plugin.
func NewUnitConverterPlugin() *UnitConverterPlugin {
	return &UnitConverterPlugin{
		Base: NewBase("unit_converter", "Unit Converter", "Convert between various units of measurement", true),
	}
}

// MatchesQuery reports whether query looks like "<value> <unit> to|in|as <unit>".
func (p *UnitConverterPlugin) MatchesQuery(query string) bool {
	return unitPattern.MatchString(strings.TrimSpace(query))
}

// Process parses and converts the query, or returns ok=false if the unit
// pair isn't one this plugin knows.
func (p *UnitConverterPlugin) Process(query string) (*engine.Answer, bool) {
	m := unitPattern.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil {
		return nil, false
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}

	result, fromUnit, toUnit, ok := convertUnit(value, m[2], m[3])
	if !ok {
		return nil, false
	}

	text := fmt.Sprintf("%.4f %s = %.4f %s", value, fromUnit, result, toUnit)
	return &engine.Answer{Text: text, Engine: "unit_converter"}, true
}

func isAny(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

// convertUnit mirrors unit_converter.rs's fixed match table exactly: a set
// of named unit pairs, not a general unit-family converter.
func convertUnit(value float64, fromRaw, toRaw string) (result float64, fromUnit, toUnit string, ok bool) {
	from := strings.ToLower(fromRaw)
	to := strings.ToLower(toRaw)

	switch {
	// Length
	case isAny(from, "km", "kilometers", "kilometer") && isAny(to, "mi", "miles", "mile"):
		return value * 0.621371, "km", "mi", true
	case isAny(from, "mi", "miles", "mile") && isAny(to, "km", "kilometers", "kilometer"):
		return value * 1.60934, "mi", "km", true
	case isAny(from, "m", "meters", "meter") && isAny(to, "ft", "feet", "foot"):
		return value * 3.28084, "m", "ft", true
	case isAny(from, "ft", "feet", "foot") && isAny(to, "m", "meters", "meter"):
		return value * 0.3048, "ft", "m", true
	case isAny(from, "cm", "centimeters", "centimeter") && isAny(to, "in", "inches", "inch"):
		return value * 0.393701, "cm", "in", true
	case isAny(from, "in", "inches", "inch") && isAny(to, "cm", "centimeters", "centimeter"):
		return value * 2.54, "in", "cm", true

	// Mass
	case isAny(from, "kg", "kilograms", "kilogram") && isAny(to, "lb", "lbs", "pounds", "pound"):
		return value * 2.20462, "kg", "lb", true
	case isAny(from, "lb", "lbs", "pounds", "pound") && isAny(to, "kg", "kilograms", "kilogram"):
		return value * 0.453592, "lb", "kg", true
	case isAny(from, "g", "grams", "gram") && isAny(to, "oz", "ounces", "ounce"):
		return value * 0.035274, "g", "oz", true
	case isAny(from, "oz", "ounces", "ounce") && isAny(to, "g", "grams", "gram"):
		return value * 28.3495, "oz", "g", true

	// Temperature
	case isAny(from, "c", "celsius", "°c") && isAny(to, "f", "fahrenheit", "°f"):
		return value*9.0/5.0 + 32.0, "°C", "°F", true
	case isAny(from, "f", "fahrenheit", "°f") && isAny(to, "c", "celsius", "°c"):
		return (value - 32.0) * 5.0 / 9.0, "°F", "°C", true
	case isAny(from, "c", "celsius", "°c") && isAny(to, "k", "kelvin"):
		return value + 273.15, "°C", "K", true
	case isAny(from, "k", "kelvin") && isAny(to, "c", "celsius", "°c"):
		return value - 273.15, "K", "°C", true

	// Volume
	case isAny(from, "l", "liters", "liter", "litres", "litre") && isAny(to, "gal", "gallons", "gallon"):
		return value * 0.264172, "L", "gal", true
	case isAny(from, "gal", "gallons", "gallon") && isAny(to, "l", "liters", "liter", "litres", "litre"):
		return value * 3.78541, "gal", "L", true
	case isAny(from, "ml", "milliliters", "milliliter") && isAny(to, "floz", "fl oz", "fluid ounces"):
		return value * 0.033814, "mL", "fl oz", true

	// Area
	case isAny(from, "sqm", "m2", "square meters") && isAny(to, "sqft", "ft2", "square feet"):
		return value * 10.7639, "m²", "ft²", true
	case isAny(from, "sqft", "ft2", "square feet") && isAny(to, "sqm", "m2", "square meters"):
		return value * 0.092903, "ft²", "m²", true

	// Speed
	case isAny(from, "kph", "km/h", "kmh") && isAny(to, "mph"):
		return value * 0.621371, "km/h", "mph", true
	case isAny(from, "mph") && isAny(to, "kph", "km/h", "kmh"):
		return value * 1.60934, "mph", "km/h", true

	// Data
	case isAny(from, "kb", "kilobytes") && isAny(to, "mb", "megabytes"):
		return value / 1024.0, "KB", "MB", true
	case isAny(from, "mb", "megabytes") && isAny(to, "gb", "gigabytes"):
		return value / 1024.0, "MB", "GB", true
	case isAny(from, "gb", "gigabytes") && isAny(to, "tb", "terabytes"):
		return value / 1024.0, "GB", "TB", true
	case isAny(from, "mb", "megabytes") && isAny(to, "kb", "kilobytes"):
		return value * 1024.0, "MB", "KB", true
	case isAny(from, "gb", "gigabytes") && isAny(to, "mb", "megabytes"):
		return value * 1024.0, "GB", "MB", true
	case isAny(from, "tb", "terabytes") && isAny(to, "gb", "gigabytes"):
		return value * 1024.0, "TB", "GB", true

	default:
		return 0, "", "", false
	}
}
