package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-garden/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales/"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Translator resolves message IDs against the embedded locale files.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	lang      string

	// Languages lists the locale codes found in the embedded files.
	Languages []string
}

// New loads the bundled locales and selects lang, falling back to English.
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir(strings.TrimSuffix(localeDir, "/"))
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage switches the active language. Unknown or malformed codes
// resolve to the closest bundled language, English by default.
func (t *Translator) SetLanguage(lang string) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	matcher := language.NewMatcher(t.bundle.LanguageTags())
	best, _, _ := matcher.Match(tag)
	base, _ := best.Base()

	t.lang = base.String()
	t.localizer = goi18n.NewLocalizer(t.bundle, t.lang, config.DefaultLanguage)
}

// Language returns the active language code.
func (t *Translator) Language() string {
	return t.lang
}

// Msg translates a message without parameters.
func (t *Translator) Msg(key string) string {
	return t.Localize(key, nil, nil)
}

// Localize translates key with template data; count selects the plural form
// and may be nil. The key itself is returned when no translation exists.
func (t *Translator) Localize(key string, data map[string]interface{}, count interface{}) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// EventSummary renders a calendar event title for a contact.
func (t *Translator) EventSummary(key, name string) string {
	return t.Localize(key, map[string]interface{}{config.TemplateKeyName: name}, nil)
}
