package geonames

// TimezoneAPIResponse is the subset of the GeoNames timezoneJSON payload we use.
type TimezoneAPIResponse struct {
	RawOffset   *float64 `json:"rawOffset"`
	DSTOffset   float64  `json:"dstOffset"`
	GMTOffset   float64  `json:"gmtOffset"`
	TimezoneID  string   `json:"timezoneId"`
	Time        string   `json:"time"`
	CountryCode string   `json:"countryCode"`
	Status      *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status,omitempty"`
}
