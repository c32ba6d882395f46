package i18n

import (
	"io/fs"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Translator resolves localized notification copy, falling back to english
// for languages without a catalog.
type Translator struct {
	printers map[string]*message.Printer
	fallback string
}

func NewTranslator(dir fs.FS, fallbackLang string) (*Translator, error) {
	cat, err := NewCatalogFromFolder(dir, fallbackLang)
	if err != nil {
		return nil, err
	}

	message.DefaultCatalog = cat

	return &Translator{
		printers: map[string]*message.Printer{
			"en": message.NewPrinter(language.English),
			"es": message.NewPrinter(language.Spanish),
		},
		fallback: fallbackLang,
	}, nil
}

func (t *Translator) T(lang, key string, values ...interface{}) string {
	printer, ok := t.printers[lang]
	if !ok {
		printer = t.printers[t.fallback]
	}
	return printer.Sprintf(key, values...)
}
