// Package translate talks to the Translation Gateway. Translation is
// best-effort: callers always get usable text back.
package translate

import (
	"context"
	"strings"
)

const DefaultLanguage = "en"

// routes maps a target language to its gateway endpoint.
var routes = map[string]string{
	"en": "/english",
	"hi": "/hindi",
	"ta": "/tamil",
	"te": "/telugu",
	"kn": "/kannada",
}

// Result carries the text to use. Degraded means Text is the untranslated input
// and Err says why.
type Result struct {
	Text     string
	Degraded bool
	Err      error
}

type Translator interface {
	Translate(ctx context.Context, text, from, to string) Result
}

// Normalize lowercases a language code and maps empty to DefaultLanguage.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage
	}
	return code
}

func IsSupported(code string) bool {
	_, ok := routes[Normalize(code)]
	return ok
}

// NeedsTranslation reports whether text in code must go through the gateway
// before reaching the advisor.
func NeedsTranslation(code string) bool {
	code = Normalize(code)
	return code != DefaultLanguage && IsSupported(code)
}

// Route returns the gateway path for a target language.
func Route(to string) (string, bool) {
	r, ok := routes[Normalize(to)]
	return r, ok
}

func degraded(text string, err error) Result {
	return Result{Text: text, Degraded: true, Err: err}
}

// Identity returns every text unchanged. Used when no gateway is configured.
type Identity struct{}

func (Identity) Translate(_ context.Context, text, _, _ string) Result {
	return Result{Text: text}
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text, from, to string) Result

func (f Func) Translate(ctx context.Context, text, from, to string) Result {
	return f(ctx, text, from, to)
}
