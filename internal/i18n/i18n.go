// Package i18n renders user-facing labels for schedule types, application
// statuses and CLI messages.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/noah-isme/uniportal/internal/models"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLocale is used when neither the context nor the translator names one.
const DefaultLocale = "ko"

type ctxKey struct{}

// Translator looks up messages in the embedded locale files.
type Translator struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

// New loads every embedded locale file.
func New(defaultLocale string) (*Translator, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	bundle := i18n.NewBundle(language.Korean)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}
	return &Translator{bundle: bundle, defaultLocale: defaultLocale}, nil
}

// WithLocale returns a context carrying the locale (e.g. "ko", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext extracts the locale, falling back to the translator default.
func (t *Translator) LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return t.defaultLocale
}

// T translates a message ID. Unknown IDs are returned as is.
func (t *Translator) T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	l := i18n.NewLocalizer(t.bundle, t.LocaleFromContext(ctx))

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}

// ScheduleType renders a schedule type; unknown types render raw.
func (t *Translator) ScheduleType(ctx context.Context, st models.ScheduleType) string {
	if !st.Valid() {
		return string(st)
	}
	return t.T(ctx, "schedule_type."+string(st))
}

// Status renders an application status; the empty status renders as unknown.
func (t *Translator) Status(ctx context.Context, s models.ApplicationStatus) string {
	if s == "" {
		return t.T(ctx, "status.unknown")
	}
	return t.T(ctx, "status."+string(s))
}
