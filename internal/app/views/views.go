// Package views holds the server-rendered portal pages
package views

import (
	"embed"
	"html/template"
	"time"

	"github.com/lempar/academia/internal/app/models"
)

//go:embed templates/*.html
var files embed.FS

// Funcs returns the helpers available to every page
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format(models.DateLayout)
		},
		"timestamp": func(t time.Time) string {
			return t.Format(models.TimestampLayout)
		},
		"levels": func() []int {
			levels := make([]int, 0, models.MaxLevel-models.MinLevel+1)
			for l := models.MinLevel; l <= models.MaxLevel; l++ {
				levels = append(levels, l)
			}
			return levels
		},
		"roles": func() []models.RoleType {
			return []models.RoleType{models.RoleViewer, models.RoleAdmin}
		},
	}
}

// Load parses every embedded page into one template set
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}
