package types

// LatLng is a plain WGS84 coordinate pair. All engine math treats latitude and
// longitude as independent planar axes; the interpolation window cap keeps
// spans short enough for that approximation.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
