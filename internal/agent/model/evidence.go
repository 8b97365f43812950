package model

// PriceEvidence is the request-scoped ledger of priced facts taken from tool results.
// Entries are appended without deduplication.
type PriceEvidence struct {
	Hotels     []HotelEvidence     `json:"hotels"`
	Transfers  []TransferEvidence  `json:"transfers"`
	Flights    []FlightEvidence    `json:"flights"`
	Excursions []ExcursionEvidence `json:"excursions"`
	Insurance  []InsuranceEvidence `json:"insurance"`
}

// Len returns the total number of entries across all services.
func (e PriceEvidence) Len() int {
	return len(e.Hotels) + len(e.Transfers) + len(e.Flights) + len(e.Excursions) + len(e.Insurance)
}

type HotelEvidence struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type TransferEvidence struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	VehicleName string   `json:"vehicleName"`
	OneWay      *float64 `json:"oneWay"`
	Return      *float64 `json:"return"`
	Currency    string   `json:"currency"`
}

type FlightEvidence struct {
	ID            string  `json:"id"`
	TotalPrice    float64 `json:"totalPrice"`
	Currency      string  `json:"currency"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departureDate"`
	ReturnDate    string  `json:"returnDate,omitempty"`
}

type ExcursionEvidence struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	AdultPrice *float64 `json:"adultPrice"`
	ChildPrice *float64 `json:"childPrice"`
	Currency   string   `json:"currency"`
}

type InsuranceEvidence struct {
	TotalPremium  float64  `json:"totalPremium"`
	Currency      string   `json:"currency"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	Days          int      `json:"days"`
	TerritoryCode string   `json:"territoryCode,omitempty"`
	RiskAmount    *float64 `json:"riskAmount"`
	RiskCurrency  string   `json:"riskCurrency,omitempty"`
	TravelerCount int      `json:"travelerCount"`
}
