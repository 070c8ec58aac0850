package email

import (
	"embed"
	"html/template"
)

// Template names an embedded HTML template under templates/.
type Template string

const (
	TemplateWelcome Template = "welcome"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// WelcomeData is the data the welcome template renders.
type WelcomeData struct {
	FirstName string
	Role      string
	Abteilung string
}

// PreviewData holds sample data per template for the preview command.
var PreviewData = map[Template]any{
	TemplateWelcome: WelcomeData{FirstName: "Ana", Role: "Ausbilder", Abteilung: "IT"},
}
