package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supported lists the target codes whose English and native names are
// accepted in place of the code.
var supported = []string{
	"af", "ar", "bg", "bn", "ca", "cs", "cy", "da", "de", "el", "en", "es", "et", "fa", "fi",
	"fil", "fr", "ga", "gu", "he", "hi", "hr", "hu", "id", "is", "it", "ja", "kn", "ko", "lt",
	"lv", "ml", "mr", "ms", "nl", "no", "pa", "pl", "pt", "ro", "ru", "sk", "sl", "sr", "sv",
	"sw", "ta", "te", "th", "tr", "uk", "ur", "vi", "zh",
}

var names = buildNames()

func buildNames() map[string]string {
	m := make(map[string]string, len(supported)*2)
	english := display.English.Languages()
	for _, code := range supported {
		tag := language.MustParse(code)
		if n := english.Name(tag); n != "" {
			m[strings.ToLower(n)] = code
		}
		if n := display.Self.Name(tag); n != "" {
			m[strings.ToLower(n)] = code
		}
	}
	return m
}

// NormalizeLanguage maps a language name ("Spanish", "français") or tag
// ("pt-BR") onto the code sent as the translation target. Values that are
// neither are returned trimmed but otherwise unchanged.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if code, ok := names[strings.ToLower(lang)]; ok {
		return code
	}
	if tag, err := language.Parse(lang); err == nil {
		return tag.String()
	}
	return lang
}

// IsEnglish reports whether lang names English in any form
// ("english", "EN", "en-GB").
func IsEnglish(lang string) bool {
	code := NormalizeLanguage(lang)
	if strings.EqualFold(code, "english") {
		return true
	}
	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "en"
}

// NeedsTranslation reports whether text must be sent to the API for lang.
// An absent or English target means the text is returned as is.
func NeedsTranslation(lang string) bool {
	return strings.TrimSpace(lang) != "" && !IsEnglish(lang)
}
