// Package i18n localizes the command-line output.
package i18n

import (
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// Message keys printed by the CLI. English text is the key itself.
const (
	MsgConfigValid   = "Configuration is valid: %s\n"
	MsgConfigInvalid = "Configuration is invalid: %s\n"
	MsgInterfaces    = "Interfaces: %d\n"
	MsgProbe         = "Probe: %s via %s, %d echoes, %ds timeout\n"
	MsgAcquire       = "Acquisition: %s\n"
	MsgInterface     = "Interface %s: %s\n"
	MsgAddress       = "  %-45s %s\n"
	MsgNoAddresses   = "  (no IPv6 addresses)\n"
	MsgRunSummary    = "%d of %d interfaces healthy\n"
)

func init() {
	de := language.German
	_ = message.SetString(de, MsgConfigValid, "Konfiguration ist gültig: %s\n")
	_ = message.SetString(de, MsgConfigInvalid, "Konfiguration ist ungültig: %s\n")
	_ = message.SetString(de, MsgInterfaces, "Schnittstellen: %d\n")
	_ = message.SetString(de, MsgProbe, "Prüfung: %s über %s, %d Echos, %ds Zeitlimit\n")
	_ = message.SetString(de, MsgAcquire, "Adressbezug: %s\n")
	_ = message.SetString(de, MsgInterface, "Schnittstelle %s: %s\n")
	_ = message.SetString(de, MsgNoAddresses, "  (keine IPv6-Adressen)\n")
	_ = message.SetString(de, MsgRunSummary, "%d von %d Schnittstellen funktionsfähig\n")
}

type contextKey struct{}

// printerKey is the key used to store the printer in the context
var printerKey = contextKey{}

// MatchLanguage returns the best supported language for a POSIX locale
// such as "de_DE.UTF-8". Unknown or empty locales fall back to English.
func MatchLanguage(locale string) language.Tag {
	// Strip encoding and modifier
	if i := strings.IndexAny(locale, ".@"); i != -1 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return DefaultLang
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLang
	}
	return SupportedLangs[idx]
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// WithPrinter returns a new context with the printer injected
func WithPrinter(ctx context.Context, p *message.Printer) context.Context {
	return context.WithValue(ctx, printerKey, p)
}

// GetPrinter returns the printer from the context, or a default one
func GetPrinter(ctx context.Context) *message.Printer {
	p, ok := ctx.Value(printerKey).(*message.Printer)
	if !ok {
		return message.NewPrinter(DefaultLang)
	}
	return p
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return message.NewPrinter(MatchLanguage(v))
		}
	}
	return message.NewPrinter(DefaultLang)
}
