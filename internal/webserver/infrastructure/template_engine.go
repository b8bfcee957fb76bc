package infrastructure

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/svera/barrio/internal/i18n"
)

// TemplateEngine loads the email views. Besides the html engine builtins they get:
//
//	t     translates a message into the given language
//	date  formats a time for the given language, empty for a nil time
func TemplateEngine(viewsFS fs.FS, translator *i18n.Translator) (*html.Engine, error) {
	engine := html.NewFileSystem(http.FS(viewsFS), ".html")

	engine.AddFunc("t", func(lang, key string, values ...any) template.HTML {
		return template.HTML(template.HTMLEscapeString(translator.T(lang, key, values...)))
	})

	engine.AddFunc("date", func(lang string, moment *time.Time) string {
		if moment == nil {
			return ""
		}
		return moment.UTC().Format(translator.T(lang, "2006-01-02 15:04 MST"))
	})

	return engine, engine.Load()
}
