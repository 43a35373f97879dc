package graph

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoBox is a bounding box given by its four bounds in decimal degrees.
type GeoBox struct {
	WestLongitude float64 `json:"westLongitude"`
	EastLongitude float64 `json:"eastLongitude"`
	SouthLatitude float64 `json:"southLatitude"`
	NorthLatitude float64 `json:"northLatitude"`
}

// GeoPolygon is an ordered ring of at least three vertices plus one point
// known to lie inside the ring.
type GeoPolygon struct {
	Points  []GeoPoint `json:"points"`
	InPoint *GeoPoint  `json:"inPoint,omitempty"`
}

// GeoLocation couples an optional free-text place name with at most one
// coordinate variant. A location may carry a place alone, a variant alone,
// or both; mixing two variants is a validation error.
type GeoLocation struct {
	Place   string      `json:"place,omitempty"`
	Point   *GeoPoint   `json:"point,omitempty"`
	Box     *GeoBox     `json:"box,omitempty"`
	Polygon *GeoPolygon `json:"polygon,omitempty"`
}

// Variant names the populated coordinate variant: "point", "box",
// "polygon", or "" when only a place (or nothing) is set.
func (g GeoLocation) Variant() string {
	switch {
	case g.Point != nil:
		return "point"
	case g.Box != nil:
		return "box"
	case g.Polygon != nil:
		return "polygon"
	default:
		return ""
	}
}

// IsEmpty reports whether the location carries neither a place nor any
// coordinate variant. Empty locations are dropped from export.
func (g GeoLocation) IsEmpty() bool {
	return g.Place == "" && g.Point == nil && g.Box == nil && g.Polygon == nil
}

func (g GeoLocation) variantCount() int {
	n := 0
	if g.Point != nil {
		n++
	}
	if g.Box != nil {
		n++
	}
	if g.Polygon != nil {
		n++
	}
	return n
}

func validLatitude(v float64) bool  { return v >= -90 && v <= 90 }
func validLongitude(v float64) bool { return v >= -180 && v <= 180 }
