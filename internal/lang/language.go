// Package lang validates and describes the language codes of a dubbing
// pair. Both sides of a pair must appear in the table below: the source
// must be transcribable and the target must be both translatable and
// speakable by the synthesis voices.
package lang

import (
	"fmt"
	"strings"
)

// languages maps ISO 639-1 base codes to the display names used in the
// translation prompt. The set is the intersection of what the
// transcription models accept and what the synthesis voices render
// intelligibly; it is deliberately narrower than the transcription-only
// list, because a language we can hear but not speak cannot be dubbed
// into.
var languages = map[string]string{
	"ar": "Arabic",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// regionNames refines common locales so the translation prompt can ask
// for the right variant (a pt-BR dub should not come out European).
var regionNames = map[string]string{
	"en-us": "American English",
	"en-gb": "British English",
	"fr-ca": "Canadian French",
	"es-mx": "Mexican Spanish",
	"pt-br": "Brazilian Portuguese",
	"pt-pt": "European Portuguese",
	"zh-cn": "Simplified Chinese",
	"zh-tw": "Traditional Chinese",
}

// Normalize lowercases a code and unifies the locale separator.
// "pt_BR", "PT-BR" and "pt-br" all become "pt-br".
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// Validate checks that a code names a dubbable language. Locale variants
// are accepted ("pt-BR", "zh-CN"); only the base code is checked. Empty
// means auto-detect and is valid for the source side.
func Validate(code string) error {
	if code == "" {
		return nil
	}
	if _, ok := languages[BaseCode(code)]; !ok {
		return fmt.Errorf("language %q is not supported for dubbing (use ISO 639-1 codes like 'en', 'fr', 'pt-BR'): %w",
			code, ErrInvalid)
	}
	return nil
}

// BaseCode strips the region from a locale. The transcription request
// takes base codes only; "pt-BR" transcribes as "pt".
func BaseCode(code string) string {
	normalized := Normalize(code)
	if idx := strings.Index(normalized, "-"); idx != -1 {
		return normalized[:idx]
	}
	return normalized
}

// DisplayName returns the name used when prompting the translator,
// preferring the regional variant when one is known. Unknown codes come
// back verbatim so the prompt still says something.
func DisplayName(code string) string {
	normalized := Normalize(code)
	if name, ok := regionNames[normalized]; ok {
		return name
	}
	if name, ok := languages[BaseCode(normalized)]; ok {
		return name
	}
	return code
}
