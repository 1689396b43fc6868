package domain

import "errors"

// ErrNetworkUnavailable means no road graph could be obtained for a city by
// either the boundary query or the point-radius fallback. Fatal for the
// planning call.
var ErrNetworkUnavailable = errors.New("road network unavailable")

// ErrGeocodeNotFound means a place name resolved to nothing after the full
// override/fallback cascade. The place is dropped, not the call.
var ErrGeocodeNotFound = errors.New("geocode: not found")

// ErrNoUsablePlaces means zero input places resolved to coordinates.
var ErrNoUsablePlaces = errors.New("no usable places")
