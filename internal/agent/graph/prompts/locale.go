package prompts

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// Locale is one of the supported reply languages.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleAZ Locale = "az"
	LocaleRU Locale = "ru"
)

// English first: the matcher falls back to the first supported tag.
var (
	supportedLocales = []Locale{LocaleEN, LocaleAZ, LocaleRU}
	localeMatcher    = language.NewMatcher([]language.Tag{
		language.MustParse("en"),
		language.MustParse("az"),
		language.MustParse("ru"),
	})
)

// ParseLocale negotiates any BCP-47 tag (e.g. "ru-RU", "az-Latn") to a supported locale.
func ParseLocale(v string) Locale {
	v = strings.TrimSpace(v)
	if v == "" {
		return LocaleEN
	}
	tag, err := language.Parse(v)
	if err != nil {
		return LocaleEN
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(supportedLocales) {
		return LocaleEN
	}
	return supportedLocales[idx]
}

type localeTexts struct {
	languageName     string
	fallbackMessage  string
	disabledNotice   string
	optionTitle      string
	exhaustedMessage string
}

var texts = map[Locale]localeTexts{
	LocaleEN: {
		languageName:     "English",
		fallbackMessage:  "To put together a package for you, please share your destination, travel dates and the number of travelers.",
		disabledNotice:   "Some services are currently disabled, so they were removed from the options.",
		optionTitle:      "Option %d",
		exhaustedMessage: "I could not finish preparing options this time. Please confirm your destination, travel dates and the number of travelers.",
	},
	LocaleAZ: {
		languageName:     "Azerbaijani",
		fallbackMessage:  "Sizə uyğun paket hazırlamaq üçün istiqaməti, səfər tarixlərini və səyahətçilərin sayını bildirin.",
		disabledNotice:   "Bəzi xidmətlər hazırda deaktivdir, ona görə də təkliflərdən çıxarıldı.",
		optionTitle:      "Variant %d",
		exhaustedMessage: "Bu dəfə təklifləri hazırlamaq mümkün olmadı. Zəhmət olmasa istiqaməti, tarixləri və səyahətçilərin sayını təsdiqləyin.",
	},
	LocaleRU: {
		languageName:     "Russian",
		fallbackMessage:  "Чтобы подобрать пакет, укажите направление, даты поездки и количество путешественников.",
		disabledNotice:   "Некоторые услуги сейчас отключены, поэтому они исключены из вариантов.",
		optionTitle:      "Вариант %d",
		exhaustedMessage: "На этот раз не удалось подготовить варианты. Пожалуйста, уточните направление, даты поездки и количество путешественников.",
	},
}

func textsFor(l Locale) localeTexts {
	if t, ok := texts[l]; ok {
		return t
	}
	return texts[LocaleEN]
}

// LanguageName is the English name of the locale's language, used in the output directive.
func LanguageName(l Locale) string { return textsFor(l).languageName }

// DisabledServicesNotice is appended to followUps when disabled services were removed.
func DisabledServicesNotice(l Locale) string { return textsFor(l).disabledNotice }

// DefaultOptionTitle titles an option the model left untitled; n is 1-based.
func DefaultOptionTitle(l Locale, n int) string { return fmt.Sprintf(textsFor(l).optionTitle, n) }

// DefaultMissing are the requirements asked for by the fallback reply.
var DefaultMissing = []string{"destination", "dates", "travelers"}

// FallbackReply is the generic collecting-stage reply used whenever no usable model answer exists.
func FallbackReply(l Locale) model.AssistantReply {
	return model.AssistantReply{
		Message:        textsFor(l).fallbackMessage,
		Stage:          model.StageCollecting,
		Missing:        append([]string(nil), DefaultMissing...),
		FollowUps:      []string{},
		PackageOptions: []model.PackageOption{},
	}
}

// ExhaustedReply is the fallback reply used when the round budget ran out.
func ExhaustedReply(l Locale) model.AssistantReply {
	reply := FallbackReply(l)
	reply.Message = textsFor(l).exhaustedMessage
	return reply
}
