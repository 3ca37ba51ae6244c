package validation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Default message keys. Thresholds are substituted as strings.
const (
	msgRequired  = "This field is required"
	msgEmail     = "Invalid email address"
	msgMinLength = "Minimum length is %s"
	msgMaxLength = "Maximum length is %s"
	msgMin       = "Minimum value is %s"
	msgMax       = "Maximum value is %s"
	msgPattern   = "Invalid format"
	msgCustom    = "Invalid value"
)

// Languages lists the languages default messages are translated into.
var Languages = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
}

type translations map[string]map[language.Tag]string

var defaultTranslations = translations{
	msgRequired: {
		language.German:  "Dieses Feld ist erforderlich",
		language.Spanish: "Este campo es obligatorio",
		language.French:  "Ce champ est obligatoire",
	},
	msgEmail: {
		language.German:  "Ungültige E-Mail-Adresse",
		language.Spanish: "Dirección de correo electrónico no válida",
		language.French:  "Adresse e-mail invalide",
	},
	msgMinLength: {
		language.German:  "Die Mindestlänge beträgt %s",
		language.Spanish: "La longitud mínima es %s",
		language.French:  "La longueur minimale est de %s",
	},
	msgMaxLength: {
		language.German:  "Die Höchstlänge beträgt %s",
		language.Spanish: "La longitud máxima es %s",
		language.French:  "La longueur maximale est de %s",
	},
	msgMin: {
		language.German:  "Der Mindestwert ist %s",
		language.Spanish: "El valor mínimo es %s",
		language.French:  "La valeur minimale est %s",
	},
	msgMax: {
		language.German:  "Der Höchstwert ist %s",
		language.Spanish: "El valor máximo es %s",
		language.French:  "La valeur maximale est %s",
	},
	msgPattern: {
		language.German:  "Ungültiges Format",
		language.Spanish: "Formato no válido",
		language.French:  "Format invalide",
	},
	msgCustom: {
		language.German:  "Ungültiger Wert",
		language.Spanish: "Valor no válido",
		language.French:  "Valeur invalide",
	},
}

var (
	messages = buildCatalog(defaultTranslations)
	matcher  = language.NewMatcher(Languages)
)

func buildCatalog(t translations) catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byLang := range t {
		if err := builder.SetString(language.English, key, key); err != nil {
			panic(err)
		}
		for lang, text := range byLang {
			if err := builder.SetString(lang, key, text); err != nil {
				panic(err)
			}
		}
	}
	return builder
}

// MatchLanguage returns the supported language closest to tag.
func MatchLanguage(tag language.Tag) language.Tag {
	_, index, _ := matcher.Match(tag)
	return Languages[index]
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(MatchLanguage(tag), message.Catalog(messages))
}
