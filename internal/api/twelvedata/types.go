package twelvedata

// statusEnvelope carries the error fields every Twelve Data response may have.
type statusEnvelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// seriesResponse is the shape of the indicator endpoints. Values are newest
// first and every field is a string.
type seriesResponse struct {
	statusEnvelope
	Values []map[string]string `json:"values"`
}

type priceResponse struct {
	statusEnvelope
	Price string `json:"price"`
}

// TwelveResponse represents the time_series response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}
