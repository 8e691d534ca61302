package web

import (
	"html/template"
	"io/fs"
	"testing"
)

func TestTemplatesParse(t *testing.T) {
	tpl, err := template.ParseFS(TemplatesFS, "templates/*.html")
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	for _, name := range []string{"index.html", "invoices.html", "head", "nav", "entry"} {
		if tpl.Lookup(name) == nil {
			t.Errorf("template %q not defined", name)
		}
	}
}

func TestStaticAssetsEmbedded(t *testing.T) {
	for _, name := range []string{"static/app.js", "static/invoice.js", "static/style.css"} {
		if _, err := fs.Stat(StaticFS, name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
