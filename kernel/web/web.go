package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var assets embed.FS

// FS returns the bundled front end rooted at its index.html.
func FS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
