package quote

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = map[string]any{
	"money":   FormatPrint,
	"percent": FormatPercent,
	"date":    FormatDate,
	"orDash":  orDash,
	"taxNote": TaxNote,
	"qr":      SummaryQR,
}

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("document.html.tmpl").
			Funcs(htmltemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/document.html.tmpl"))
	textTemplate = texttemplate.Must(texttemplate.New("document.txt.tmpl").
			Funcs(texttemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/document.txt.tmpl"))
)

// RenderHTML writes the print-formatted quote page.
func RenderHTML(w io.Writer, doc Document) error {
	if err := htmlTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render html document: %w", err)
	}
	return nil
}

// RenderText writes a plain-text version of the quote for terminals.
func RenderText(w io.Writer, doc Document) error {
	if err := textTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render text document: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
