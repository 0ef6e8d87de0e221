package databox

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number decodes a JSON value that may arrive as a number, a numeric
// string, null, or be absent entirely. The aggregation API is not
// consistent about numeric typing, so anything unparseable coerces to 0.
type Number float64

// UnmarshalJSON implements flexible numeric decoding.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Float returns the value as a float64.
func (n Number) Float() float64 { return float64(n) }

// Row is one raw reporting record: one row per dimension per day.
type Row struct {
	Date        string `json:"date"`
	Source      string `json:"source"`
	Campaign    string `json:"campaign"`
	Spend       Number `json:"spend"`
	Clicks      Number `json:"clicks"`
	Impressions Number `json:"impressions"`
	Conversions Number `json:"conversions"`
}

// Query describes one metrics request against the aggregation API.
type Query struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Fields   []string `json:"fields"`
	Source   string   `json:"source,omitempty"`
	PageSize int      `json:"page_size,omitempty"`
}

// DefaultFields is the field list every report query requests.
func DefaultFields() []string {
	return []string{"date", "source", "campaign", "spend", "clicks", "impressions", "conversions"}
}

type queryResponse struct {
	Data []Row `json:"data"`
}
