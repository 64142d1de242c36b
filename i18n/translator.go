package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "want" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "type_not_found":
			msg = "型が登録されていません"
		case "unsupported_configuration":
			msg = "構成がこの型と矛盾しています"
		case "truncated_input":
			msg = "入力が途中で終わっています"
		case "malformed_input":
			msg = "入力の形式が不正です"
		case "missing_field":
			msg = "必須フィールドが不足しています"
		case "shape_mismatch":
			msg = "値の形が型と一致しません"
		}
	default: // "en"
		switch code {
		case "type_not_found":
			msg = "type not registered"
		case "unsupported_configuration":
			msg = "configuration is inconsistent for this type"
		case "truncated_input":
			msg = "input ended before the field was complete"
		case "malformed_input":
			msg = "input violates the field encoding"
		case "missing_field":
			msg = "required field missing"
		case "shape_mismatch":
			msg = "value shape does not match the field"
		}
	}
	if msg == "" {
		return code
	}
	if want, got := data["want"], data["got"]; want != "" || got != "" {
		var b strings.Builder
		b.WriteString(msg)
		b.WriteString(" (")
		if want != "" {
			b.WriteString("want ")
			b.WriteString(want)
		}
		if got != "" {
			if want != "" {
				b.WriteString(", ")
			}
			b.WriteString("got ")
			b.WriteString(got)
		}
		b.WriteString(")")
		return b.String()
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
