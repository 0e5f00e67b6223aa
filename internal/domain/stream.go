package domain

// LatLngStream is the ordered list of [lat, lng] pairs recorded along
// one activity's route.
type LatLngStream [][2]float64
