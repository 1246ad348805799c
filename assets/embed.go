package assets

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html static/*
var FS embed.FS

// Templates parses every page template.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(FS, "templates/*.html")
}

// Static is the file tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		panic(err) // static/ is embedded above
	}
	return sub
}
