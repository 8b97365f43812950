package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/prompts"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen    = 128 * 1024 // 128KB
	maxOptionsParsed = 20         // options inspected before the reply cap applies
	maxErrSnippet    = 200
)

// ParseReply turns the model's final content into an AssistantReply. It never fails:
// anything unusable yields the locale fallback reply and ok=false.
func ParseReply(content string, locale prompts.Locale) (reply model.AssistantReply, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "reply_parser").Msgf("panic recovered: %v", r)
			reply, ok = prompts.FallbackReply(locale), false
		}
	}()

	root, err := decodeRoot(content)
	if err != nil {
		logx.Warn().
			Str("component", "reply_parser").
			Err(err).
			Str("snippet", safeSnippet(content)).
			Msg("model reply rejected")
		return prompts.FallbackReply(locale), false
	}

	message := optText(root["message"], maxMessageLen)
	if message == nil {
		logx.Warn().Str("component", "reply_parser").Msg("model reply has no message")
		return prompts.FallbackReply(locale), false
	}

	rawOptions, present := root["packageOptions"]
	var optionList []any
	if present && rawOptions != nil {
		list, isList := rawOptions.([]any)
		if !isList {
			logx.Warn().Str("component", "reply_parser").Msg("packageOptions is not an array")
			return prompts.FallbackReply(locale), false
		}
		optionList = list
	}

	reply = model.AssistantReply{
		Message:        *message,
		Stage:          parseStage(root["stage"]),
		Missing:        stringList(root["missing"], model.MaxMissing),
		FollowUps:      stringList(root["followUps"], model.MaxFollowUps),
		PackageOptions: parseOptions(optionList, locale),
	}
	reply.EnforceStage()
	return reply, true
}

func decodeRoot(content string) (map[string]any, error) {
	if len(content) > maxContentLen {
		return nil, fmt.Errorf("content exceeds %d bytes", maxContentLen)
	}
	body := stripFences(content)
	if !strings.HasPrefix(body, "{") {
		return nil, fmt.Errorf("content is not a json object")
	}
	var root map[string]any
	if err := json.Unmarshal([]byte(body), &root); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("reply is null")
	}
	return root, nil
}

// stripFences removes a surrounding markdown code fence such as ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseStage(v any) model.Stage {
	s, _ := v.(string)
	switch stage := model.Stage(strings.ToLower(strings.TrimSpace(s))); stage {
	case model.StageCollecting, model.StageProposing, model.StageReady:
		return stage
	default:
		return model.StageCollecting
	}
}

// freeOptionID returns the first option-<k> id, k >= n, not already taken.
func freeOptionID(taken map[string]struct{}, n int) string {
	for k := n; ; k++ {
		id := fmt.Sprintf("option-%d", k)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func parseOptions(raw []any, locale prompts.Locale) []model.PackageOption {
	options := []model.PackageOption{}
	seenIDs := map[string]struct{}{}
	for i, item := range raw {
		if i >= maxOptionsParsed || len(options) == model.MaxPackageOptions {
			break
		}
		m := object(item)
		if m == nil {
			continue
		}
		draft := parseDraft(object(m["draft"]))
		if !draft.HasSelection() {
			continue
		}

		n := len(options) + 1
		id := ""
		if s := optString(m["id"]); s != nil {
			id = *s
		}
		if _, dup := seenIDs[id]; id == "" || dup {
			id = freeOptionID(seenIDs, n)
		}
		seenIDs[id] = struct{}{}

		title := prompts.DefaultOptionTitle(locale, n)
		if s := optString(m["title"]); s != nil {
			title = *s
		}

		total := object(m["approxTotal"])
		options = append(options, model.PackageOption{
			ID:         id,
			Title:      title,
			Summary:    optText(m["summary"], maxMessageLen),
			Confidence: confidence(m["confidence"]),
			ApproxTotal: model.ApproxTotal{
				Amount:   optAmount(total["amount"]),
				Currency: optCurrency(total["currency"]),
				Note:     optString(total["note"]),
			},
			Highlights: stringList(m["highlights"], model.MaxHighlights),
			Draft:      draft,
		})
	}
	return options
}

func parseDraft(m map[string]any) model.PackageDraft {
	if m == nil {
		return model.PackageDraft{}
	}
	return model.PackageDraft{
		Hotel:     parseHotel(object(m["hotel"])),
		Transfer:  parseTransfer(object(m["transfer"])),
		Flight:    parseFlight(object(m["flight"])),
		Excursion: parseExcursion(object(m["excursion"])),
		Insurance: parseInsurance(object(m["insurance"])),
	}
}

func parseHotel(m map[string]any) *model.HotelDraft {
	if m == nil {
		return nil
	}
	return &model.HotelDraft{
		Selected:     optBool(m["selected"]),
		HotelCode:    optString(m["hotelCode"]),
		HotelName:    optString(m["hotelName"]),
		City:         optString(m["city"]),
		CheckInDate:  optDate(m["checkInDate"]),
		CheckOutDate: optDate(m["checkOutDate"]),
		RoomCount:    optCount(m["roomCount"]),
		Price:        optAmount(m["price"]),
		Currency:     optCurrency(m["currency"]),
	}
}

func parseTransfer(m map[string]any) *model.TransferDraft {
	if m == nil {
		return nil
	}
	return &model.TransferDraft{
		Selected:     optBool(m["selected"]),
		SelectionID:  optString(m["selectionId"]),
		TransferType: optString(m["transferType"]),
		VehicleName:  optString(m["vehicleName"]),
		Origin:       optString(m["origin"]),
		Destination:  optString(m["destination"]),
		TravelDate:   optDate(m["travelDate"]),
		PaxCount:     optCount(m["paxCount"]),
		Price:        optAmount(m["price"]),
		Currency:     optCurrency(m["currency"]),
	}
}

func parseFlight(m map[string]any) *model.FlightDraft {
	if m == nil {
		return nil
	}
	return &model.FlightDraft{
		Selected:      optBool(m["selected"]),
		SelectionID:   optString(m["selectionId"]),
		Origin:        optUpper(m["origin"]),
		Destination:   optUpper(m["destination"]),
		DepartureDate: optDate(m["departureDate"]),
		ReturnDate:    optDate(m["returnDate"]),
		CabinClass:    optString(m["cabinClass"]),
		Carrier:       optString(m["carrier"]),
		Price:         optAmount(m["price"]),
		Currency:      optCurrency(m["currency"]),
	}
}

func parseExcursion(m map[string]any) *model.ExcursionDraft {
	if m == nil {
		return nil
	}
	draft := &model.ExcursionDraft{
		Selected: optBool(m["selected"]),
		Items:    []model.ExcursionItem{},
		Total:    optAmount(m["total"]),
		Currency: optCurrency(m["currency"]),
	}
	raw, _ := m["items"].([]any)
	fold := cases.Fold()
	seen := map[string]struct{}{}
	for _, entry := range raw {
		if len(draft.Items) == model.MaxExcursionItems {
			break
		}
		im := object(entry)
		if im == nil {
			continue
		}
		item := model.ExcursionItem{
			ID:       optString(im["id"]),
			Name:     optString(im["name"]),
			Date:     optDate(im["date"]),
			Price:    optAmount(im["price"]),
			Currency: optCurrency(im["currency"]),
		}
		if item.ID == nil && item.Name == nil {
			continue
		}
		key := "name:" + fold.String(deref(item.Name))
		if item.ID != nil {
			key = "id:" + fold.String(*item.ID)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		draft.Items = append(draft.Items, item)
	}
	return draft
}

func parseInsurance(m map[string]any) *model.InsuranceDraft {
	if m == nil {
		return nil
	}
	return &model.InsuranceDraft{
		Selected:      optBool(m["selected"]),
		StartDate:     optDate(m["startDate"]),
		EndDate:       optDate(m["endDate"]),
		Days:          optCount(m["days"]),
		TerritoryCode: optUpper(m["territoryCode"]),
		RiskAmount:    optAmount(m["riskAmount"]),
		RiskCurrency:  optCurrency(m["riskCurrency"]),
		TravelerCount: optCount(m["travelerCount"]),
		Price:         optAmount(m["price"]),
		Currency:      optCurrency(m["currency"]),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return clip(s, maxErrSnippet) + "..."
}
