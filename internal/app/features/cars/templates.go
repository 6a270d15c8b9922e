// internal/app/features/cars/templates.go
package cars

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "cars",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
