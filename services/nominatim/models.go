package nominatim

// SearchAPIResponse is the list returned by the Nominatim /search endpoint.
type SearchAPIResponse []Place

type Place struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class"`
	Type        string `json:"type"`
}
