package domain

import "math"

// WebMercatorBaseResolution is the meters-per-pixel resolution of the
// standard web tile scheme at zoom 0 on the equator. Resolution at zoom
// z equals this value divided by 2^z.
const WebMercatorBaseResolution = 156543.03392804097

// MaxWebZoom bounds zoom suggestions to the common web range.
const MaxWebZoom = 22

// SuggestMaxZoom solves z = log2(base/resolution), rounds up and clamps
// to [0, MaxWebZoom]. It returns nil, never an error, when the pixel
// resolution is non-positive or not finite.
func SuggestMaxZoom(resolution float64) *int {
	res := math.Abs(resolution)
	if !(res > 0) || math.IsInf(res, 0) || math.IsNaN(res) {
		return nil
	}
	z := math.Log2(WebMercatorBaseResolution / res)
	if math.IsInf(z, 0) || math.IsNaN(z) {
		return nil
	}
	clamped := int(math.Max(0, math.Min(MaxWebZoom, math.Ceil(z))))
	return &clamped
}

// CorrectLatLng guards against axis-order leakage from spatial
// reference registries that default to latitude-first. If the first
// component's magnitude exceeds 90 degrees while the second component's
// magnitude does not, the pair arrived swapped and is corrected.
// A pair where neither or both components exceed 90 is left alone.
func CorrectLatLng(lat, lng float64) (float64, float64) {
	if math.Abs(lat) > 90 && math.Abs(lng) <= 90 {
		return lng, lat
	}
	return lat, lng
}
