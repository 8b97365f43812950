package model

import "time"

// ToolCall is a tool invocation requested by the model. Arguments is untrusted.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult is the outcome of one tool call. Failures are values, never panics or errors.
type ToolResult struct {
	OK    bool   `json:"ok"`
	Tool  string `json:"tool"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`

	Elapsed time.Duration `json:"-"`
}

// Tool payloads echo the effective search so priced facts can be tied to their query.

type DestinationsPayload struct {
	Search       DestinationQuery `json:"search"`
	Destinations []Destination    `json:"destinations"`
	Count        int              `json:"count"`
}

type HotelsPayload struct {
	Search        HotelSearchRequest `json:"search"`
	Destination   string             `json:"destination"`
	PropertyCount int                `json:"propertyCount"`
	Hotels        []HotelOffer       `json:"hotels"`
}

type TransfersPayload struct {
	Search    TransferSearchRequest `json:"search"`
	Transfers []TransferRate        `json:"transfers"`
	Count     int                   `json:"count"`
}

type ExcursionSearch struct {
	Query    string   `json:"query,omitempty"`
	Limit    int      `json:"limit"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

type ExcursionsPayload struct {
	Search     ExcursionSearch `json:"search"`
	Excursions []Excursion     `json:"excursions"`
	Fee        float64         `json:"fee"`
	Count      int             `json:"count"`
}

type FlightsPayload struct {
	Search   FlightSearchRequest `json:"search"`
	Currency string              `json:"currency"`
	Offers   []FlightOffer       `json:"offers"`
	Mock     bool                `json:"mock,omitempty"`
}

type InsurancePayload struct {
	Search InsuranceQuoteRequest `json:"search"`
	Quote  InsuranceQuote        `json:"quote"`
}
