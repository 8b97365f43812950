package model

import "time"

// ServiceFlags is the platform-wide enablement snapshot of bookable services.
type ServiceFlags struct {
	Hotel     bool `json:"hotel"`
	Transfer  bool `json:"transfer"`
	Flight    bool `json:"flight"`
	Excursion bool `json:"excursion"`
	Insurance bool `json:"insurance"`
}

// AllServicesEnabled is used when no flag store is configured.
func AllServicesEnabled() ServiceFlags {
	return ServiceFlags{Hotel: true, Transfer: true, Flight: true, Excursion: true, Insurance: true}
}

// Enabled reports the flag for a service tag; unknown tags are enabled.
func (f ServiceFlags) Enabled(service string) bool {
	switch service {
	case ServiceHotel:
		return f.Hotel
	case ServiceTransfer:
		return f.Transfer
	case ServiceFlight:
		return f.Flight
	case ServiceExcursion:
		return f.Excursion
	case ServiceInsurance:
		return f.Insurance
	default:
		return true
	}
}

// UserSignals is the behavioral summary of a signed-in user.
type UserSignals struct {
	Profile                 *UserProfile       `json:"profile,omitempty"`
	RecentSearches          []RecentSearch     `json:"recentSearches"`
	FavoriteHotels          []FavoriteHotel    `json:"favoriteHotels"`
	RecentBookings          []RecentBooking    `json:"recentBookings"`
	RecentAssistantSessions []AssistantSession `json:"recentAssistantSessions"`
}

type UserProfile struct {
	FirstName         string `json:"firstName,omitempty"`
	HomeCity          string `json:"homeCity,omitempty"`
	HomeAirport       string `json:"homeAirport,omitempty"`
	PreferredCurrency string `json:"preferredCurrency,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
}

type RecentSearch struct {
	Service     string    `json:"service"`
	Destination string    `json:"destination,omitempty"`
	CheckInDate string    `json:"checkInDate,omitempty"`
	SearchedAt  time.Time `json:"searchedAt"`
}

type FavoriteHotel struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RecentBooking struct {
	Service     string    `json:"service"`
	Destination string    `json:"destination,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	BookedAt    time.Time `json:"bookedAt"`
}

type AssistantSession struct {
	SessionID string    `json:"sessionId"`
	Stage     Stage     `json:"stage"`
	UpdatedAt time.Time `json:"updatedAt"`
}
