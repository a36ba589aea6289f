package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// words maps full language words seen in tags and filenames onto codes
// the parser understands.
var words = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

func parse(code string) (xlang.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return xlang.Und, false
	}
	if mapped, ok := words[code]; ok {
		code = mapped
	}
	t, err := xlang.Parse(code)
	if err != nil {
		return xlang.Und, false
	}
	return t, true
}

// Normalize converts any recognized language identifier to the ISO
// 639-2 three-letter code container tooling expects. Unrecognized
// three-letter input passes through lowercased, since mkvmerge knows
// codes this package does not; anything else becomes "und".
func Normalize(code string) string {
	t, ok := parse(code)
	if !ok || t == xlang.Und {
		trimmed := strings.ToLower(strings.TrimSpace(code))
		if len(trimmed) == 3 {
			return trimmed
		}
		return "und"
	}
	base, _ := t.Base()
	return base.ISO3()
}

// DisplayName returns a human-readable English name for a language
// identifier, or the uppercased input when nothing recognizes it.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	t, ok := parse(code)
	if !ok || t == xlang.Und {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(t); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}

// ExtractFromTags extracts and normalizes the language from stream
// metadata tags. Checks common tag keys: language, LANGUAGE, Language,
// language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
