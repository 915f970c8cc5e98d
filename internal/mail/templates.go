package mail

import (
	"bytes"
	"embed"
	"fmt"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const TemplatePasswordReset = "password_reset"

// PasswordResetData is bound to the password_reset template.
type PasswordResetData struct {
	Name       string
	ResetURL   string
	ExpiresMin int
}

type Renderer struct {
	engine *html.Engine
}

func NewRenderer() (*Renderer, error) {
	engine := html.NewFileSystem(http.FS(templateFS), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}
	return &Renderer{engine: engine}, nil
}

func (r *Renderer) Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, "templates/"+name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
