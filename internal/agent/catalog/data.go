package catalog

import "github.com/tanpawarit/tripcomposer/internal/agent/model"

// ===================================
// Demo inventory
// ===================================

// All prices are USD; other currencies are derived with fxFromUSD.

var fxFromUSD = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"AZN": 1.70,
	"RUB": 92.5,
}

var MockDestinations = []model.Destination{
	{Code: "AYT", Name: "Antalya", CountryCode: "TR"},
	{Code: "IST", Name: "Istanbul", CountryCode: "TR"},
	{Code: "BJV", Name: "Bodrum", CountryCode: "TR"},
	{Code: "DXB", Name: "Dubai", CountryCode: "AE"},
	{Code: "TBS", Name: "Tbilisi", CountryCode: "GE"},
	{Code: "BUS", Name: "Batumi", CountryCode: "GE"},
	{Code: "GYD", Name: "Baku", CountryCode: "AZ"},
	{Code: "GBB", Name: "Gabala", CountryCode: "AZ"},
}

type mockHotel struct {
	Code        string
	Name        string
	Destination string
	City        string
	Rating      float64
	NightlyUSD  float64
}

var MockHotels = []mockHotel{
	{Code: "AYT-SEA-01", Name: "Sea Breeze Resort", Destination: "AYT", City: "Lara", Rating: 4.6, NightlyUSD: 145},
	{Code: "AYT-OLD-02", Name: "Kaleici Old Town Boutique", Destination: "AYT", City: "Antalya", Rating: 4.3, NightlyUSD: 88},
	{Code: "AYT-BEL-03", Name: "Belek Golf & Spa", Destination: "AYT", City: "Belek", Rating: 4.8, NightlyUSD: 260},
	{Code: "IST-BOS-01", Name: "Bosphorus Pearl", Destination: "IST", City: "Besiktas", Rating: 4.7, NightlyUSD: 210},
	{Code: "IST-SUL-02", Name: "Sultanahmet Courtyard", Destination: "IST", City: "Fatih", Rating: 4.2, NightlyUSD: 95},
	{Code: "BJV-BAY-01", Name: "Bodrum Bay Suites", Destination: "BJV", City: "Bodrum", Rating: 4.5, NightlyUSD: 175},
	{Code: "DXB-MAR-01", Name: "Marina Skyline", Destination: "DXB", City: "Dubai Marina", Rating: 4.4, NightlyUSD: 190},
	{Code: "DXB-DEI-02", Name: "Deira Creek Inn", Destination: "DXB", City: "Deira", Rating: 3.9, NightlyUSD: 70},
	{Code: "TBS-OLD-01", Name: "Old Tbilisi Terrace", Destination: "TBS", City: "Tbilisi", Rating: 4.5, NightlyUSD: 80},
	{Code: "BUS-SEA-01", Name: "Batumi Seaside Tower", Destination: "BUS", City: "Batumi", Rating: 4.1, NightlyUSD: 75},
	{Code: "GBB-MNT-01", Name: "Gabala Mountain Lodge", Destination: "GBB", City: "Gabala", Rating: 4.4, NightlyUSD: 110},
}

var MockTransfers = []model.TransferRate{
	{ID: "TR-AYT-01", Type: "shared", Origin: "Antalya Airport", Destination: "Lara", VehicleName: "Shuttle bus", PaxMin: 1, PaxMax: 16, OneWayPrice: price(12), ReturnPrice: price(22)},
	{ID: "TR-AYT-02", Type: "private", Origin: "Antalya Airport", Destination: "Lara", VehicleName: "Mercedes Vito", PaxMin: 1, PaxMax: 6, OneWayPrice: price(45), ReturnPrice: price(85)},
	{ID: "TR-AYT-03", Type: "vip", Origin: "Antalya Airport", Destination: "Belek", VehicleName: "Mercedes V-Class VIP", PaxMin: 1, PaxMax: 5, OneWayPrice: price(95), ReturnPrice: nil},
	{ID: "TR-IST-01", Type: "private", Origin: "Istanbul Airport", Destination: "Sultanahmet", VehicleName: "Sedan", PaxMin: 1, PaxMax: 3, OneWayPrice: price(55), ReturnPrice: price(100)},
	{ID: "TR-IST-02", Type: "shared", Origin: "Istanbul Airport", Destination: "Taksim", VehicleName: "Havaist coach", PaxMin: 1, PaxMax: 40, OneWayPrice: price(8), ReturnPrice: price(15)},
	{ID: "TR-DXB-01", Type: "private", Origin: "Dubai International", Destination: "Dubai Marina", VehicleName: "Lexus ES", PaxMin: 1, PaxMax: 3, OneWayPrice: price(60), ReturnPrice: price(110)},
	{ID: "TR-TBS-01", Type: "private", Origin: "Tbilisi Airport", Destination: "Old Tbilisi", VehicleName: "Minivan", PaxMin: 1, PaxMax: 7, OneWayPrice: price(25), ReturnPrice: price(45)},
}

// transferCities maps transfer destinations back to destination codes.
var transferCities = map[string]string{
	"TR-AYT-01": "AYT",
	"TR-AYT-02": "AYT",
	"TR-AYT-03": "AYT",
	"TR-IST-01": "IST",
	"TR-IST-02": "IST",
	"TR-DXB-01": "DXB",
	"TR-TBS-01": "TBS",
}

var MockExcursions = []model.Excursion{
	{ID: "EX-001", Name: "Duden Waterfalls & Old Town", City: "Antalya", Duration: "6h", AdultPrice: price(35), ChildPrice: price(18)},
	{ID: "EX-002", Name: "Pamukkale Day Trip", City: "Antalya", Duration: "14h", AdultPrice: price(69), ChildPrice: price(35)},
	{ID: "EX-003", Name: "Bosphorus Sunset Cruise", City: "Istanbul", Duration: "3h", AdultPrice: price(40), ChildPrice: price(20)},
	{ID: "EX-004", Name: "Hagia Sophia & Blue Mosque Walk", City: "Istanbul", Duration: "4h", AdultPrice: price(30), ChildPrice: nil},
	{ID: "EX-005", Name: "Desert Safari with BBQ", City: "Dubai", Duration: "6h", AdultPrice: price(75), ChildPrice: price(55)},
	{ID: "EX-006", Name: "Kazbegi Mountain Tour", City: "Tbilisi", Duration: "10h", AdultPrice: price(45), ChildPrice: price(25)},
	{ID: "EX-007", Name: "Gobustan & Mud Volcanoes", City: "Baku", Duration: "5h", AdultPrice: price(38), ChildPrice: price(19)},
	{ID: "EX-008", Name: "Boat Trip to Kemer Coves", City: "Antalya", Duration: "7h", AdultPrice: price(28), ChildPrice: price(14)},
	{ID: "EX-009", Name: "Cappadocia Balloon Flight", City: "Istanbul", Duration: "1 day", AdultPrice: price(240), ChildPrice: nil},
	{ID: "EX-010", Name: "Burj Khalifa At The Top", City: "Dubai", Duration: "2h", AdultPrice: price(52), ChildPrice: price(40)},
}

// excursionFeeUSD is the booking fee added once per excursion order.
const excursionFeeUSD = 5

type mockCarrier struct {
	Code   string
	Factor float64
}

var mockCarriers = []mockCarrier{
	{Code: "J2", Factor: 1.0},
	{Code: "TK", Factor: 1.18},
	{Code: "PC", Factor: 0.82},
}

// mockFares is the one-way economy adult fare per route; routes are symmetric.
var mockFares = map[[2]string]float64{
	{"GYD", "AYT"}: 210,
	{"GYD", "IST"}: 180,
	{"GYD", "DXB"}: 240,
	{"GYD", "TBS"}: 95,
	{"GYD", "BJV"}: 260,
	{"IST", "AYT"}: 70,
	{"TBS", "IST"}: 150,
	{"DXB", "IST"}: 230,
}

var cabinFactor = map[string]float64{
	"economy":         1,
	"premium_economy": 1.6,
	"business":        3.2,
	"first":           5,
}

// insuranceDailyUSD is the per-traveler daily rate by age band upper bound.
var insuranceDailyUSD = []struct {
	MaxAge int
	Rate   float64
}{
	{MaxAge: 17, Rate: 0.9},
	{MaxAge: 64, Rate: 1.4},
	{MaxAge: 200, Rate: 3.1},
}

var territoryFactor = map[string]float64{
	"EU":    1.0,
	"WORLD": 1.35,
	"TR":    0.8,
	"GE":    0.7,
	"AE":    1.1,
}

func price(v float64) *float64 { return &v }
