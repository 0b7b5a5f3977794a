package email

import (
	"embed"
	"html/template"
	"sync"

	"github.com/pkg/errors"
)

// Template names an HTML template under templates/.
type Template string

const (
	TemplateWelcome           Template = "welcome"
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplateOrderStatus       Template = "order_status"
)

// Templates lists every template the client can render.
func Templates() []Template {
	return []Template{TemplateWelcome, TemplateOrderConfirmation, TemplateOrderStatus}
}

//go:embed templates/*.html
var templateFS embed.FS

var (
	parsedMu sync.Mutex
	parsed   = map[Template]*template.Template{}
)

// load parses the shared layout together with the named body once.
func load(name Template) (*template.Template, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if t, ok := parsed[name]; ok {
		return t, nil
	}

	t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(name)+".html")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse email template %s", name)
	}
	parsed[name] = t
	return t, nil
}
