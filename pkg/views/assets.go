package views

import (
	"embed"
	"io/fs"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

//go:embed static
var static embed.FS

// Assets holds the client files served under /static/
var Assets fs.FS

func init() {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	Assets = sub
}
