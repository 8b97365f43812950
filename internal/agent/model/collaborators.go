package model

import "context"

// External capabilities consumed by the tool executors. Implementations apply
// their own timeouts and must honor ctx cancellation.

type DestinationDirectory interface {
	LookupDestinations(ctx context.Context, req DestinationQuery) ([]Destination, error)
}

type HotelSearcher interface {
	SearchHotels(ctx context.Context, req HotelSearchRequest) (*HotelSearchResult, error)
}

type TransferSearcher interface {
	SearchTransfers(ctx context.Context, req TransferSearchRequest) ([]TransferRate, error)
}

type ExcursionSearcher interface {
	SearchExcursions(ctx context.Context, limit int) (*ExcursionSearchResult, error)
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, req FlightSearchRequest) (*FlightSearchResult, error)
}

type InsuranceQuoter interface {
	QuoteInsurance(ctx context.Context, req InsuranceQuoteRequest) (*InsuranceQuote, error)
}

type UserSignalLoader interface {
	LoadUserSignals(ctx context.Context, userID string) (*UserSignals, error)
}

type ServiceFlagLoader interface {
	LoadServiceFlags(ctx context.Context) (ServiceFlags, error)
}

// ================ Destinations ================
type DestinationQuery struct {
	Query       string `json:"query,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Limit       int    `json:"limit"`
}

type Destination struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode,omitempty"`
}

// ================ Hotels ================
type HotelSearchRequest struct {
	DestinationCode string `json:"destinationCode,omitempty"`
	HotelCode       string `json:"hotelCode,omitempty"`
	CheckInDate     string `json:"checkInDate"`
	CheckOutDate    string `json:"checkOutDate"`
	Rooms           int    `json:"roomCount"`
	Adults          int    `json:"adults"`
	Children        int    `json:"children"`
	Currency        string `json:"currency,omitempty"`
}

type HotelSearchResult struct {
	Destination   string       `json:"destination"`
	PropertyCount int          `json:"propertyCount"`
	Hotels        []HotelOffer `json:"hotels"`
}

type HotelOffer struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	City     string  `json:"city,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	MinPrice float64 `json:"minPrice"`
	Currency string  `json:"currency"`
}

// ================ Transfers ================
type TransferSearchRequest struct {
	DestinationCode string `json:"destinationLocationCode,omitempty"`
	DestinationName string `json:"destinationName,omitempty"`
	TransferType    string `json:"transferType,omitempty"`
	PaxCount        int    `json:"paxCount"`
	TravelDate      string `json:"travelDate,omitempty"`
}

type TransferRate struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	VehicleName string   `json:"vehicleName"`
	PaxMin      int      `json:"paxMin"`
	PaxMax      int      `json:"paxMax"`
	OneWayPrice *float64 `json:"oneWayPrice"`
	ReturnPrice *float64 `json:"returnPrice"`
	Currency    string   `json:"currency"`
	ValidFrom   string   `json:"validFrom,omitempty"`
	ValidTo     string   `json:"validTo,omitempty"`
}

// ================ Excursions ================
type ExcursionSearchResult struct {
	Excursions []Excursion `json:"excursions"`
	Fee        float64     `json:"fee"`
}

type Excursion struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	City        string   `json:"city,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	AdultPrice  *float64 `json:"adultPrice"`
	ChildPrice  *float64 `json:"childPrice"`
	Currency    string   `json:"currency"`
}

// ================ Flights ================
type FlightSearchRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	CabinClass    string `json:"cabinClass"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Currency      string `json:"currency,omitempty"`
}

type FlightSearchResult struct {
	Currency string        `json:"currency"`
	Offers   []FlightOffer `json:"offers"`
	Mock     bool          `json:"mock,omitempty"`
}

type FlightOffer struct {
	ID             string          `json:"id"`
	TotalPrice     float64         `json:"totalPrice"`
	Currency       string          `json:"currency"`
	Segments       []FlightSegment `json:"segments"`
	ReturnSegments []FlightSegment `json:"returnSegments,omitempty"`
}

type FlightSegment struct {
	Carrier       string `json:"carrier"`
	FlightNumber  string `json:"flightNumber"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
}

// ================ Insurance ================
type InsuranceQuoteRequest struct {
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Days          int                 `json:"days"`
	TerritoryCode string              `json:"territoryCode,omitempty"`
	RiskAmount    *float64            `json:"riskAmount,omitempty"`
	RiskCurrency  string              `json:"riskCurrency,omitempty"`
	RiskLabel     string              `json:"riskLabel,omitempty"`
	Subrisks      []string            `json:"subrisks,omitempty"`
	Travelers     []InsuranceTraveler `json:"travelers"`
}

type InsuranceTraveler struct {
	ID        string `json:"id"`
	BirthDate string `json:"birthDate,omitempty"`
	Age       int    `json:"age,omitempty"`
}

type InsuranceQuote struct {
	TotalPremium  float64           `json:"totalPremium"`
	Currency      string            `json:"currency"`
	Sum           *float64          `json:"sum,omitempty"`
	DiscountedSum *float64          `json:"discountedSum,omitempty"`
	Premiums      []TravelerPremium `json:"premiums"`
}

type TravelerPremium struct {
	TravelerID string  `json:"travelerId"`
	Premium    float64 `json:"premium"`
}
