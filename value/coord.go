package value

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLatitude parses a decimal-degree latitude and checks its range.
func ParseLatitude(token string) (float64, error) {
	f, err := parseCoordinate(token)
	if err != nil {
		return 0, err
	}
	if f < -90 || f > 90 {
		return 0, fmt.Errorf("latitude %v out of range (-90..90)", f)
	}
	return f, nil
}

// ParseLongitude parses a decimal-degree longitude and checks its range.
func ParseLongitude(token string) (float64, error) {
	f, err := parseCoordinate(token)
	if err != nil {
		return 0, err
	}
	if f < -180 || f > 180 {
		return 0, fmt.Errorf("longitude %v out of range (-180..180)", f)
	}
	return f, nil
}

// ParsePointPair parses a "lat,lon" vertex token as used in polygon cells.
// Coordinates use the dot as decimal separator; the comma separates the
// pair.
func ParsePointPair(token string) (lat, lon float64, err error) {
	parts := strings.Split(strings.TrimSpace(token), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinate pair %q (expected \"lat,lon\")", token)
	}
	lat, err = ParseLatitude(parts[0])
	if err != nil {
		return 0, 0, err
	}
	lon, err = ParseLongitude(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// FormatCoordinate renders a decimal-degree coordinate with the shortest
// representation that parses back to the same value.
func FormatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseCoordinate(token string) (float64, error) {
	cleaned := strings.TrimSpace(token)
	if cleaned == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", token)
	}
	return f, nil
}
