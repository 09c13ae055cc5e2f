package service

import (
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"golang.org/x/text/language"
)

// Display languages the currency names are translated into
const (
	LanguageEnglish            = entity.DefaultLanguage
	LanguageTraditionalChinese = "zh-TW"
	LanguageSimplifiedChinese  = "zh-CN"
)

// SupportedLanguages lists the display languages in menu order
var SupportedLanguages = []string{LanguageEnglish, LanguageTraditionalChinese, LanguageSimplifiedChinese}

var chinese, _ = language.Chinese.Base()

// IsSupportedLanguage reports whether lang is one of SupportedLanguages
func IsSupportedLanguage(lang string) bool {
	for _, supported := range SupportedLanguages {
		if lang == supported {
			return true
		}
	}
	return false
}

// ResolveLanguage picks the display language. A supported stored choice wins;
// otherwise the first preference of an Accept-Language style list decides:
// Chinese in Traditional script maps to zh-TW, other Chinese to zh-CN and
// everything else to English.
func ResolveLanguage(stored, acceptLanguage string) string {
	if IsSupportedLanguage(stored) {
		return stored
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LanguageEnglish
	}

	tag := tags[0]
	if base, _ := tag.Base(); base != chinese {
		return LanguageEnglish
	}

	if script, _ := tag.Script(); script.String() == "Hant" {
		return LanguageTraditionalChinese
	}
	return LanguageSimplifiedChinese
}
