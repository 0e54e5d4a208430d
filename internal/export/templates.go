package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"
)

// SafeHTML is a template function that marks a string as safe HTML
func SafeHTML(s interface{}) template.HTML {
	switch v := s.(type) {
	case string:
		return template.HTML(v)
	case template.HTML:
		return v
	default:
		return template.HTML("")
	}
}

//go:embed templates/*.html
var templateFS embed.FS

var documentTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"safeHTML": SafeHTML,
	}

	templateContent, err := templateFS.ReadFile("templates/document.html")
	if err != nil {
		// Fallback to built-in template if file not found
		documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}

	documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(string(templateContent)))
}

// TemplateData holds data for document template rendering
type TemplateData struct {
	Title       string
	Status      string
	ContentHTML template.HTML
	GapsHTML    template.HTML
	GapCount    int
	UploadedBy  string
	UpdatedAt   time.Time
}

// RenderDocumentHTML renders the document template with provided data
func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load
const fallbackTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { border-collapse: collapse; margin: 1rem 0; width: 100%; }
    th, td { border: 1px solid #999; padding: 0.4rem 0.6rem; text-align: left; }
    td.gap { background: #fff3cd; }
    td.filled { background: #d4edda; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.Status | lower}} | {{.UploadedBy}} | {{formatDate .UpdatedAt "Jan 2, 2006"}}</div>
  <div>{{.ContentHTML | safeHTML}}</div>
  {{if .GapsHTML}}<div>{{.GapsHTML | safeHTML}}</div>{{end}}
</body>
</html>`
