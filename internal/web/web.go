package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/yourorg/trading-admin/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageTemplate is the name of the dashboard page template
const PageTemplate = "page.tmpl"

// Templates parses the embedded dashboard templates
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.tmpl")
}

// Funcs returns the helpers available to the templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"cell":       Cell,
		"selectedID": selectedID,
	}
}

// Cell renders one table value
func Cell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case time.Time:
		if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0 {
			return value.Format(model.DateLayout)
		}
		return value.Format("2006-01-02 15:04:05")
	case []byte:
		return string(value)
	default:
		return fmt.Sprint(value)
	}
}

// selectedID reports whether a submitted form value names id
func selectedID(id int64, value string) bool {
	return value == fmt.Sprint(id)
}
