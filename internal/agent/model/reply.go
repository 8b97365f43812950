package model

type Stage string

const (
	StageCollecting Stage = "collecting"
	StageProposing  Stage = "proposing"
	StageReady      Stage = "ready"
)

// Service tags of the five bookable categories.
const (
	ServiceHotel     = "hotel"
	ServiceTransfer  = "transfer"
	ServiceFlight    = "flight"
	ServiceExcursion = "excursion"
	ServiceInsurance = "insurance"
)

// Reply limits.
const (
	MaxPackageOptions = 3
	MaxHighlights     = 5
	MaxMissing        = 8
	MaxFollowUps      = 5
	MaxExcursionItems = 8
)

// AssistantReply is the structured answer returned to the caller.
type AssistantReply struct {
	Message        string          `json:"message"`
	Stage          Stage           `json:"stage"`
	Missing        []string        `json:"missing"`
	FollowUps      []string        `json:"followUps"`
	PackageOptions []PackageOption `json:"packageOptions"`
}

type PackageOption struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Summary     *string      `json:"summary"`
	Confidence  *float64     `json:"confidence"`
	ApproxTotal ApproxTotal  `json:"approxTotal"`
	Highlights  []string     `json:"highlights"`
	Draft       PackageDraft `json:"draft"`
}

type ApproxTotal struct {
	Amount   *float64 `json:"amount"`
	Currency *string  `json:"currency"`
	Note     *string  `json:"note"`
}

// PackageDraft holds the optional per-service selections of an option.
type PackageDraft struct {
	Hotel     *HotelDraft     `json:"hotel,omitempty"`
	Transfer  *TransferDraft  `json:"transfer,omitempty"`
	Flight    *FlightDraft    `json:"flight,omitempty"`
	Excursion *ExcursionDraft `json:"excursion,omitempty"`
	Insurance *InsuranceDraft `json:"insurance,omitempty"`
}

// HasSelection reports whether at least one sub-draft is selected.
func (d PackageDraft) HasSelection() bool {
	return (d.Hotel != nil && d.Hotel.Selected) ||
		(d.Transfer != nil && d.Transfer.Selected) ||
		(d.Flight != nil && d.Flight.Selected) ||
		(d.Excursion != nil && d.Excursion.Selected) ||
		(d.Insurance != nil && d.Insurance.Selected)
}

// Services lists the service tags present in the draft.
func (d PackageDraft) Services() []string {
	var out []string
	if d.Hotel != nil {
		out = append(out, ServiceHotel)
	}
	if d.Transfer != nil {
		out = append(out, ServiceTransfer)
	}
	if d.Flight != nil {
		out = append(out, ServiceFlight)
	}
	if d.Excursion != nil {
		out = append(out, ServiceExcursion)
	}
	if d.Insurance != nil {
		out = append(out, ServiceInsurance)
	}
	return out
}

type HotelDraft struct {
	Selected     bool     `json:"selected"`
	HotelCode    *string  `json:"hotelCode"`
	HotelName    *string  `json:"hotelName"`
	City         *string  `json:"city"`
	CheckInDate  *string  `json:"checkInDate"`
	CheckOutDate *string  `json:"checkOutDate"`
	RoomCount    *int     `json:"roomCount"`
	Price        *float64 `json:"price"`
	Currency     *string  `json:"currency"`
}

type TransferDraft struct {
	Selected     bool     `json:"selected"`
	SelectionID  *string  `json:"selectionId"`
	TransferType *string  `json:"transferType"`
	VehicleName  *string  `json:"vehicleName"`
	Origin       *string  `json:"origin"`
	Destination  *string  `json:"destination"`
	TravelDate   *string  `json:"travelDate"`
	PaxCount     *int     `json:"paxCount"`
	Price        *float64 `json:"price"`
	Currency     *string  `json:"currency"`
}

type FlightDraft struct {
	Selected      bool     `json:"selected"`
	SelectionID   *string  `json:"selectionId"`
	Origin        *string  `json:"origin"`
	Destination   *string  `json:"destination"`
	DepartureDate *string  `json:"departureDate"`
	ReturnDate    *string  `json:"returnDate"`
	CabinClass    *string  `json:"cabinClass"`
	Carrier       *string  `json:"carrier"`
	Price         *float64 `json:"price"`
	Currency      *string  `json:"currency"`
}

type ExcursionDraft struct {
	Selected bool            `json:"selected"`
	Items    []ExcursionItem `json:"items"`
	Total    *float64        `json:"total"`
	Currency *string         `json:"currency"`
}

type ExcursionItem struct {
	ID       *string  `json:"id"`
	Name     *string  `json:"name"`
	Date     *string  `json:"date"`
	Price    *float64 `json:"price"`
	Currency *string  `json:"currency"`
}

type InsuranceDraft struct {
	Selected      bool     `json:"selected"`
	StartDate     *string  `json:"startDate"`
	EndDate       *string  `json:"endDate"`
	Days          *int     `json:"days"`
	TerritoryCode *string  `json:"territoryCode"`
	RiskAmount    *float64 `json:"riskAmount"`
	RiskCurrency  *string  `json:"riskCurrency"`
	TravelerCount *int     `json:"travelerCount"`
	Price         *float64 `json:"price"`
	Currency      *string  `json:"currency"`
}

// EnforceStage caps options and reconciles the stage with the option count:
// ready without options becomes collecting, collecting with options becomes proposing.
func (r *AssistantReply) EnforceStage() {
	if len(r.PackageOptions) > MaxPackageOptions {
		r.PackageOptions = r.PackageOptions[:MaxPackageOptions]
	}
	switch r.Stage {
	case StageCollecting, StageProposing, StageReady:
	default:
		r.Stage = StageCollecting
	}
	if r.Stage == StageReady && len(r.PackageOptions) == 0 {
		r.Stage = StageCollecting
	}
	if r.Stage == StageCollecting && len(r.PackageOptions) > 0 {
		r.Stage = StageProposing
	}
}
