package email

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"humanize": humanize,
}

// rolled_back -> rolled back
func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// loadTemplates email template'lerini yükler
func loadTemplates() (*template.Template, error) {
	return template.New("email").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
