package tools

import (
	"slices"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
)

// ===================================
// Tool names
// ===================================

const (
	ToolLookupDestinations = "lookup_destinations"
	ToolSearchHotels       = "search_hotels"
	ToolSearchTransfers    = "search_transfers"
	ToolSearchExcursions   = "search_excursions"
	ToolSearchFlights      = "search_flights"
	ToolQuoteInsurance     = "quote_insurance"
)

type definition struct {
	name   string
	desc   string
	params map[string]*schema.ParameterInfo
}

func dateParam(desc string, required bool) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: desc + " (YYYY-MM-DD)", Required: required}
}

var currencyParam = &schema.ParameterInfo{Type: schema.String, Desc: "ISO 4217 currency code, e.g. USD, EUR, AZN"}

// definitions is ordered; the order is what the model sees.
var definitions = []definition{
	{
		name: ToolLookupDestinations,
		desc: "Look up destination codes by name or country. Use it before searching hotels or transfers when the destination code is unknown.",
		params: map[string]*schema.ParameterInfo{
			"query":       {Type: schema.String, Desc: "Destination or city name, any language"},
			"countryCode": {Type: schema.String, Desc: "ISO 3166-1 alpha-2 country code filter, e.g. TR"},
			"limit":       {Type: schema.Integer, Desc: "Maximum results (default 10, max 25)"},
		},
	},
	{
		name: ToolSearchHotels,
		desc: "Search hotel availability and minimum stay prices for a destination or a specific hotel. Requires stay dates.",
		params: map[string]*schema.ParameterInfo{
			"destinationCode": {Type: schema.String, Desc: "Destination code from lookup_destinations"},
			"hotelCode":       {Type: schema.String, Desc: "Specific hotel code, alternative to destinationCode"},
			"checkInDate":     dateParam("Check-in date", true),
			"checkOutDate":    dateParam("Check-out date, after check-in", true),
			"roomCount":       {Type: schema.Integer, Desc: "Number of rooms (default from trip context or 1)"},
			"adults":          {Type: schema.Integer, Desc: "Adults (default from trip context or 2)"},
			"children":        {Type: schema.Integer, Desc: "Children (default from trip context or 0)"},
			"currency":        currencyParam,
		},
	},
	{
		name: ToolSearchTransfers,
		desc: "Search airport and city transfer rates to a destination.",
		params: map[string]*schema.ParameterInfo{
			"destinationLocationCode": {Type: schema.String, Desc: "Destination location code"},
			"destinationName":         {Type: schema.String, Desc: "Destination name, alternative to the code"},
			"transferType": {
				Type: schema.String,
				Desc: "Transfer type",
				Enum: []string{"private", "shared", "vip"},
			},
			"paxCount":   {Type: schema.Integer, Desc: "Number of passengers (default adults + children)"},
			"travelDate": dateParam("Transfer date", false),
		},
	},
	{
		name: ToolSearchExcursions,
		desc: "Search excursions with adult and child prices.",
		params: map[string]*schema.ParameterInfo{
			"query":    {Type: schema.String, Desc: "Keyword filter on name, city or description"},
			"limit":    {Type: schema.Integer, Desc: "Maximum results (default 20, max 50)"},
			"maxPrice": {Type: schema.Number, Desc: "Maximum adult price"},
		},
	},
	{
		name: ToolSearchFlights,
		desc: "Search flight offers between two airports.",
		params: map[string]*schema.ParameterInfo{
			"origin":        {Type: schema.String, Desc: "Origin IATA airport or city code", Required: true},
			"destination":   {Type: schema.String, Desc: "Destination IATA airport or city code", Required: true},
			"departureDate": dateParam("Departure date", true),
			"returnDate":    dateParam("Return date for round trips", false),
			"cabinClass": {
				Type: schema.String,
				Desc: "Cabin class (default economy)",
				Enum: []string{"economy", "premium_economy", "business", "first"},
			},
			"adults":   {Type: schema.Integer, Desc: "Adults (default from trip context or 1)"},
			"children": {Type: schema.Integer, Desc: "Children (default from trip context or 0)"},
			"currency": currencyParam,
		},
	},
	{
		name: ToolQuoteInsurance,
		desc: "Quote a travel insurance premium for the trip dates and travelers.",
		params: map[string]*schema.ParameterInfo{
			"startDate":     dateParam("Coverage start date", true),
			"endDate":       dateParam("Coverage end date", true),
			"days":          {Type: schema.Integer, Desc: "Coverage days (default derived from dates, inclusive)"},
			"territoryCode": {Type: schema.String, Desc: "Coverage territory code, e.g. EUROPE, WORLD"},
			"riskAmount":    {Type: schema.Number, Desc: "Coverage amount"},
			"riskCurrency":  currencyParam,
			"riskLabel":     {Type: schema.String, Desc: "Coverage plan label"},
			"subrisks": {
				Type:     schema.Array,
				Desc:     "Optional extra coverages",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
			"travelers": {
				Type: schema.Array,
				Desc: "Travelers to insure (default derived from trip context)",
				ElemInfo: &schema.ParameterInfo{
					Type: schema.Object,
					SubParams: map[string]*schema.ParameterInfo{
						"birthDate": dateParam("Birth date", false),
						"age":       {Type: schema.Integer, Desc: "Age in years"},
					},
				},
			},
		},
	},
}

// Names returns the tool names in registry order.
func Names() []string {
	return lo.Map(definitions, func(d definition, _ int) string { return d.name })
}

// ToolInfos returns the six tool schemas for binding to an eino chat model.
func ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(definitions))
	for _, d := range definitions {
		infos = append(infos, &schema.ToolInfo{
			Name:        d.name,
			Desc:        d.desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(d.params),
		})
	}
	return infos
}

// FunctionSpec is a provider-neutral function declaration with a JSON-schema parameter object.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FunctionSpecs renders the registry as JSON-schema declarations for backends outside eino.
func FunctionSpecs() []FunctionSpec {
	return lo.Map(definitions, func(d definition, _ int) FunctionSpec {
		return FunctionSpec{
			Name:        d.name,
			Description: d.desc,
			Parameters:  objectSchema(d.params),
		}
	})
}

func objectSchema(params map[string]*schema.ParameterInfo) map[string]any {
	properties := make(map[string]any, len(params))
	required := []string{}
	for name, p := range params {
		properties[name] = paramSchema(p)
		if p.Required {
			required = append(required, name)
		}
	}
	slices.Sort(required)
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func paramSchema(p *schema.ParameterInfo) map[string]any {
	if p.Type == schema.Object {
		out := objectSchema(p.SubParams)
		if p.Desc != "" {
			out["description"] = p.Desc
		}
		return out
	}
	out := map[string]any{"type": string(p.Type)}
	if p.Desc != "" {
		out["description"] = p.Desc
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	if p.ElemInfo != nil {
		out["items"] = paramSchema(p.ElemInfo)
	}
	return out
}
