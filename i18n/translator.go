package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "received", "key" or "options").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {name} placeholders that are filled from data.
type dictTranslator struct{ lang string }

var catalogs = map[string]map[string]string{
	"en": {
		"invalid_type":  "Invalid input: expected {expected}, received {received}",
		"invalid_value": "Invalid option: expected one of {options}",
		"invalid_union": "Invalid input",
		"unknown_key":   "Unrecognized key: \"{key}\"",
		"empty_object":  "Invalid input: expected populated object, received empty object",
		"too_small":     "Too small: expected {origin} to have >={minimum} items",
		"too_big":       "Too big: expected {origin} to have <={maximum} items",
		"parse_error":   "Invalid request body",
	},
	"ja": {
		"invalid_type":  "入力が不正です: {expected} が必要ですが {received} を受け取りました",
		"invalid_value": "選択肢が不正です: {options} のいずれかが必要です",
		"invalid_union": "入力が不正です",
		"unknown_key":   "未知のキーです: \"{key}\"",
		"empty_object":  "入力が不正です: 空ではないオブジェクトが必要です",
		"too_small":     "小さすぎます: {origin} の要素数は {minimum} 以上が必要です",
		"too_big":       "大きすぎます: {origin} の要素数は {maximum} 以下が必要です",
		"parse_error":   "リクエストボディが不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	cat, ok := catalogs[t.lang]
	if !ok {
		cat = catalogs["en"]
	}
	tmpl, ok := cat[code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }
