package parsers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/prompts"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

func init() { logx.Silence() }

func TestParseReplyFallbacks(t *testing.T) {
	cases := []string{
		"",
		"Sure! Here are some hotels.",
		"{broken",
		"[]",
		"null",
		`{"stage":"proposing"}`,
		`{"message":"   "}`,
		`{"message":"hi","packageOptions":{"id":"x"}}`,
		strings.Repeat(" ", maxContentLen+1),
	}
	for _, c := range cases {
		reply, ok := ParseReply(c, prompts.LocaleEN)
		assert.False(t, ok, "content %q", safeSnippet(c))
		assert.Equal(t, prompts.FallbackReply(prompts.LocaleEN), reply)
	}
}

func TestParseReplyFenced(t *testing.T) {
	content := "```json\n{\"message\":\"Where to?\",\"stage\":\"collecting\",\"missing\":[\"destination\",\"Destination\",\" dates \"]}\n```"
	reply, ok := ParseReply(content, prompts.LocaleEN)
	require.True(t, ok)
	assert.Equal(t, "Where to?", reply.Message)
	assert.Equal(t, model.StageCollecting, reply.Stage)
	assert.Equal(t, []string{"destination", "dates"}, reply.Missing)
	assert.Equal(t, []string{}, reply.FollowUps)
	assert.Equal(t, []model.PackageOption{}, reply.PackageOptions)
}

func TestParseReplyConfidenceClamp(t *testing.T) {
	content := `{"message":"m","stage":"proposing","packageOptions":[
		{"id":"a","confidence":1.4,"draft":{"hotel":{"selected":true}}},
		{"id":"b","confidence":-0.3,"draft":{"hotel":{"selected":true}}},
		{"id":"c","confidence":0.456,"draft":{"hotel":{"selected":true}}}
	]}`
	reply, ok := ParseReply(content, prompts.LocaleEN)
	require.True(t, ok)
	require.Len(t, reply.PackageOptions, 3)
	assert.Equal(t, 1.0, *reply.PackageOptions[0].Confidence)
	assert.Equal(t, 0.0, *reply.PackageOptions[1].Confidence)
	assert.Equal(t, 0.46, *reply.PackageOptions[2].Confidence)
}

func TestParseReplyFieldCoercion(t *testing.T) {
	content := `{
		"message": "  Two ideas  ",
		"stage": "READY",
		"packageOptions": [{
			"id": "  ",
			"title": "",
			"summary": "",
			"approxTotal": {"amount": "1240.5", "currency": " USD ", "note": " per stay "},
			"highlights": ["Sea view", "sea view", "Pool", "", 5, "Spa", "Kids club", "Gym", "Bar"],
			"draft": {
				"hotel": {"selected": true, "hotelCode": " H1 ", "checkInDate": "2026-02-30", "checkOutDate": "2026-03-04", "roomCount": 1.6, "price": -5, "currency": "US$"},
				"flight": {"selected": "true", "origin": "gyd", "price": "NaN"},
				"excursion": {"selected": false, "items": [{"id":"E1","price":30},{"id":"e1","price":31},{"name":"Walk"},{"date":"2026-07-02"}]},
				"insurance": "yes"
			}
		}]
	}`
	reply, ok := ParseReply(content, prompts.LocaleRU)
	require.True(t, ok)
	assert.Equal(t, "Two ideas", reply.Message)
	assert.Equal(t, model.StageReady, reply.Stage)
	require.Len(t, reply.PackageOptions, 1)

	opt := reply.PackageOptions[0]
	assert.Equal(t, "option-1", opt.ID)
	assert.Equal(t, "Вариант 1", opt.Title)
	assert.Nil(t, opt.Summary)
	assert.Equal(t, 1240.5, *opt.ApproxTotal.Amount)
	assert.Equal(t, "USD", *opt.ApproxTotal.Currency)
	assert.Equal(t, "per stay", *opt.ApproxTotal.Note)
	assert.Equal(t, []string{"Sea view", "Pool", "Spa", "Kids club", "Gym"}, opt.Highlights)

	h := opt.Draft.Hotel
	require.NotNil(t, h)
	assert.Equal(t, "H1", *h.HotelCode)
	assert.Nil(t, h.CheckInDate)
	assert.Equal(t, "2026-03-04", *h.CheckOutDate)
	assert.Equal(t, 2, *h.RoomCount)
	assert.Nil(t, h.Price)
	assert.Nil(t, h.Currency)

	f := opt.Draft.Flight
	require.NotNil(t, f)
	assert.True(t, f.Selected)
	assert.Equal(t, "GYD", *f.Origin)
	assert.Nil(t, f.Price)

	e := opt.Draft.Excursion
	require.NotNil(t, e)
	require.Len(t, e.Items, 2)
	assert.Equal(t, "E1", *e.Items[0].ID)
	assert.Equal(t, "Walk", *e.Items[1].Name)

	assert.Nil(t, opt.Draft.Insurance)
}

func TestParseReplyDropsUnselectedAndCaps(t *testing.T) {
	var opts []string
	opts = append(opts, `{"id":"none","draft":{"hotel":{"selected":false}}}`)
	opts = append(opts, `{"id":"empty"}`)
	opts = append(opts, `"not an object"`)
	for i := 0; i < 5; i++ {
		opts = append(opts, fmt.Sprintf(`{"id":"o%d","draft":{"transfer":{"selected":true}}}`, i))
	}
	content := fmt.Sprintf(`{"message":"m","stage":"collecting","packageOptions":[%s]}`, strings.Join(opts, ","))

	reply, ok := ParseReply(content, prompts.LocaleEN)
	require.True(t, ok)
	require.Len(t, reply.PackageOptions, model.MaxPackageOptions)
	assert.Equal(t, "o0", reply.PackageOptions[0].ID)
	assert.Equal(t, model.StageProposing, reply.Stage)
	for _, o := range reply.PackageOptions {
		assert.True(t, o.Draft.HasSelection())
	}
}

func TestParseReplyReadyWithoutOptions(t *testing.T) {
	reply, ok := ParseReply(`{"message":"done","stage":"ready","packageOptions":[]}`, prompts.LocaleEN)
	require.True(t, ok)
	assert.Equal(t, model.StageCollecting, reply.Stage)

	reply, ok = ParseReply(`{"message":"done","stage":"weird"}`, prompts.LocaleEN)
	require.True(t, ok)
	assert.Equal(t, model.StageCollecting, reply.Stage)
}

func TestParseReplyDuplicateOptionIDs(t *testing.T) {
	content := `{"message":"m","packageOptions":[
		{"id":"x","draft":{"hotel":{"selected":true}}},
		{"id":"x","draft":{"hotel":{"selected":true}}}
	]}`
	reply, ok := ParseReply(content, prompts.LocaleEN)
	require.True(t, ok)
	require.Len(t, reply.PackageOptions, 2)
	assert.Equal(t, "x", reply.PackageOptions[0].ID)
	assert.Equal(t, "option-2", reply.PackageOptions[1].ID)

	// A generated id must not collide with an explicit one.
	content = `{"message":"m","packageOptions":[
		{"id":"option-2","draft":{"hotel":{"selected":true}}},
		{"draft":{"hotel":{"selected":true}}},
		{"id":"option-2","draft":{"hotel":{"selected":true}}}
	]}`
	reply, ok = ParseReply(content, prompts.LocaleEN)
	require.True(t, ok)
	ids := lo.Map(reply.PackageOptions, func(o model.PackageOption, _ int) string { return o.ID })
	assert.Equal(t, []string{"option-2", "option-3", "option-4"}, ids)
}

func TestParseReplyCurrencyMustBeUpperCase(t *testing.T) {
	content := `{"message":"m","packageOptions":[{
		"approxTotal": {"amount": 900, "currency": "usd"},
		"draft": {"hotel": {"selected": true, "price": 900, "currency": "Usd"},
			"flight": {"selected": true, "price": 300, "currency": "EUR"}}
	}]}`
	reply, ok := ParseReply(content, prompts.LocaleEN)
	require.True(t, ok)
	require.Len(t, reply.PackageOptions, 1)
	opt := reply.PackageOptions[0]
	assert.Nil(t, opt.ApproxTotal.Currency)
	assert.Nil(t, opt.Draft.Hotel.Currency)
	require.NotNil(t, opt.Draft.Flight.Currency)
	assert.Equal(t, "EUR", *opt.Draft.Flight.Currency)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1}  `))
}
