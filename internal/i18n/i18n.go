// Package i18n translates user-facing API messages.
package i18n

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a new translator with the default messages.
func NewTranslator() *Translator {
	return &Translator{messages: defaultMessages}
}

// GetTranslator returns the default singleton translator instance.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the message for key in locale, falling back to
// DefaultLocale and finally to the key itself.
func (t *Translator) Translate(key, locale string) string {
	if msg, ok := t.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Has reports whether key is translated in the default locale.
func (t *Translator) Has(key string) bool {
	_, ok := t.messages[DefaultLocale][key]
	return ok
}

// GetLocale picks the first supported language listed in the Accept-Language
// header. Region subtags are ignored and languages are taken in the order the
// client sent them; quality values are not weighed.
func GetLocale(c *gin.Context) string {
	return ParseAcceptLanguage(c.GetHeader(AcceptLanguageHeader))
}

// ParseAcceptLanguage returns the first supported language of an
// Accept-Language value, or DefaultLocale.
func ParseAcceptLanguage(header string) string {
	for part := range strings.SplitSeq(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		lang, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		lang = strings.ToLower(lang)
		if _, ok := defaultMessages[lang]; ok {
			return lang
		}
	}
	return DefaultLocale
}

// Locales lists the supported languages.
func Locales() []string {
	return slices.Sorted(maps.Keys(defaultMessages))
}

var defaultMessages = map[string]map[string]string{
	"en": {
		"error.invalid_request":        "Invalid request",
		"error.invalid_request_body":   "Invalid request body",
		"error.invalid_order_id":       "Order id must be a 24 character hex string",
		"error.invalid_leave_id":       "Leave id must be a 24 character hex string",
		"error.internal_error":         "An unexpected error occurred",
		"error.not_found":              "Not found",
		"error.rate_limit_exceeded":    "Too many requests, please try again later",
		"error.conflict":               "Conflict",
		"error.timeout":                "The request timed out",
		"error.service_unavailable":    "The order store is unavailable, please try again later",
		"error.version_conflict":       "The order was changed by someone else, please retry",
		"error.sweep_in_progress":      "A reconciliation sweep is already running",
		"error.idempotency_key_reused": "The Idempotency-Key was already used for a different request",
		"error.idempotency_in_flight":  "A request with this Idempotency-Key is still being processed",
		"error.invalid_range":          "The start date is after the end date",
		"error.out_of_range":           "The dates fall outside the order period",
		"error.overlapping_leave":      "The leave overlaps another leave for the same meal",
		"error.leave_cap_exceeded":     "The order has no leave days left",
		"error.conflicting_leave":      "The change conflicts with an existing leave",
		"error.unknown_date":           "The order has no attendance record for that date",
		"error.invalid_transition":     "That change is not allowed in the current state",
		"error.already_delivered":      "The meal was already delivered",
		"error.overlapping_order":      "The subscriber already has an order for that period",

		"success.sweep_completed": "Reconciliation sweep completed",
	},
	"pt": {
		"error.invalid_request":        "Requisição inválida",
		"error.invalid_request_body":   "Corpo da requisição inválido",
		"error.invalid_order_id":       "O id do pedido deve ter 24 caracteres hexadecimais",
		"error.invalid_leave_id":       "O id da licença deve ter 24 caracteres hexadecimais",
		"error.internal_error":         "Ocorreu um erro inesperado",
		"error.not_found":              "Não encontrado",
		"error.rate_limit_exceeded":    "Muitas requisições, tente novamente mais tarde",
		"error.conflict":               "Conflito",
		"error.timeout":                "A requisição expirou",
		"error.service_unavailable":    "O armazenamento de pedidos está indisponível, tente novamente mais tarde",
		"error.version_conflict":       "O pedido foi alterado por outra pessoa, tente novamente",
		"error.sweep_in_progress":      "Uma reconciliação já está em andamento",
		"error.idempotency_key_reused": "A Idempotency-Key já foi usada em outra requisição",
		"error.idempotency_in_flight":  "Uma requisição com esta Idempotency-Key ainda está em processamento",
		"error.invalid_range":          "A data inicial é posterior à data final",
		"error.out_of_range":           "As datas estão fora do período do pedido",
		"error.overlapping_leave":      "A licença se sobrepõe a outra licença da mesma refeição",
		"error.leave_cap_exceeded":     "O pedido não tem mais dias de licença disponíveis",
		"error.conflicting_leave":      "A alteração conflita com uma licença existente",
		"error.unknown_date":           "O pedido não tem registro de presença para essa data",
		"error.invalid_transition":     "Essa alteração não é permitida no estado atual",
		"error.already_delivered":      "A refeição já foi entregue",
		"error.overlapping_order":      "O assinante já tem um pedido para esse período",

		"success.sweep_completed": "Reconciliação concluída",
	},
	"nl": {
		"error.invalid_request":        "Ongeldig verzoek",
		"error.invalid_request_body":   "Ongeldige aanvraag body",
		"error.invalid_order_id":       "Bestelling-id moet een hexadecimale tekenreeks van 24 tekens zijn",
		"error.invalid_leave_id":       "Verlof-id moet een hexadecimale tekenreeks van 24 tekens zijn",
		"error.internal_error":         "Er is een onverwachte fout opgetreden",
		"error.not_found":              "Niet gevonden",
		"error.rate_limit_exceeded":    "Te veel verzoeken, probeer het later opnieuw",
		"error.conflict":               "Conflict",
		"error.timeout":                "Het verzoek is verlopen",
		"error.service_unavailable":    "De bestellingsopslag is niet beschikbaar, probeer het later opnieuw",
		"error.version_conflict":       "De bestelling is door iemand anders gewijzigd, probeer het opnieuw",
		"error.sweep_in_progress":      "Er loopt al een reconciliatie",
		"error.idempotency_key_reused": "De Idempotency-Key is al gebruikt voor een ander verzoek",
		"error.idempotency_in_flight":  "Een verzoek met deze Idempotency-Key wordt nog verwerkt",
		"error.invalid_range":          "De begindatum ligt na de einddatum",
		"error.out_of_range":           "De data vallen buiten de bestelperiode",
		"error.overlapping_leave":      "Het verlof overlapt een ander verlof voor dezelfde maaltijd",
		"error.leave_cap_exceeded":     "De bestelling heeft geen verlofdagen meer",
		"error.conflicting_leave":      "De wijziging botst met een bestaand verlof",
		"error.unknown_date":           "De bestelling heeft geen aanwezigheid voor die datum",
		"error.invalid_transition":     "Die wijziging is in de huidige toestand niet toegestaan",
		"error.already_delivered":      "De maaltijd is al geleverd",
		"error.overlapping_order":      "De abonnee heeft al een bestelling voor die periode",

		"success.sweep_completed": "Reconciliatie voltooid",
	},
}
