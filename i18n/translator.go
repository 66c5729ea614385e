package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "min" or "max").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogue = map[string]map[string]string{
	"en": {
		"invalid_type":   "invalid type",
		"required":       "value is required",
		"too_short":      "must be at least {min} characters",
		"too_long":       "must be at most {max} characters",
		"too_small":      "must be greater than or equal to {min}",
		"too_big":        "must be less than or equal to {max}",
		"pattern":        "does not match the expected pattern",
		"invalid_enum":   "is not one of the allowed values",
		"invalid_format": "has an invalid format",
		"duplicate_key":  "duplicate key",
		"parse_error":    "parse error",
		"truncated":      "truncated",
	},
	"es": {
		"invalid_type":   "tipo no válido",
		"required":       "el valor es obligatorio",
		"too_short":      "debe tener al menos {min} caracteres",
		"too_long":       "debe tener como máximo {max} caracteres",
		"too_small":      "debe ser mayor o igual que {min}",
		"too_big":        "debe ser menor o igual que {max}",
		"pattern":        "no coincide con el patrón esperado",
		"invalid_enum":   "no es uno de los valores permitidos",
		"invalid_format": "tiene un formato no válido",
		"duplicate_key":  "clave duplicada",
		"parse_error":    "error de análisis",
		"truncated":      "truncado",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalogue[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"es").
func SetLanguage(lang string) {
	if lang != "es" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
// Unknown codes are returned unchanged.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
