package i18n

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator renders messages in any of the languages found in its translations folder
type Translator struct {
	printers  map[string]*message.Printer
	languages []string
	matcher   language.Matcher
}

// NewTranslator reads every yml file in dir. Each file must be named after the two-letter
// identifier of its language, e.g. "es.yml". Keys missing in a language fall back to fallbackLang.
func NewTranslator(dir fs.FS, fallbackLang string) (*Translator, error) {
	files, err := fs.ReadDir(dir, ".")
	if err != nil {
		return nil, err
	}

	dictionaries := map[string]catalog.Dictionary{}
	languages := []string{}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".yml" {
			continue
		}
		yamlFile, err := fs.ReadFile(dir, file.Name())
		if err != nil {
			return nil, err
		}
		dict, err := parseYAMLDict(yamlFile)
		if err != nil {
			return nil, err
		}
		lang := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		dictionaries[lang] = dict
		languages = append(languages, lang)
	}

	if len(languages) == 0 {
		return nil, fmt.Errorf("no translations found")
	}

	cat, err := catalog.NewFromMap(dictionaries, catalog.Fallback(language.MustParse(fallbackLang)))
	if err != nil {
		return nil, err
	}

	// The fallback language goes first so the matcher defaults to it
	sort.SliceStable(languages, func(i, j int) bool {
		return languages[i] == fallbackLang && languages[j] != fallbackLang
	})

	tags := make([]language.Tag, len(languages))
	printers := make(map[string]*message.Printer, len(languages))
	for i, lang := range languages {
		tags[i] = language.MustParse(lang)
		printers[lang] = message.NewPrinter(tags[i], message.Catalog(cat))
	}

	return &Translator{
		printers:  printers,
		languages: languages,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// T translates key into lang, formatting values into it
func (t *Translator) T(lang, key string, values ...any) string {
	printer, ok := t.printers[lang]
	if !ok {
		printer = t.printers[t.languages[0]]
	}
	return printer.Sprintf(key, values...)
}

// Match returns the supported language that best fits an Accept-Language header value
func (t *Translator) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.languages[0]
	}
	_, index, _ := t.matcher.Match(tags...)
	return t.languages[index]
}

func (t *Translator) Languages() []string {
	return append([]string(nil), t.languages...)
}
