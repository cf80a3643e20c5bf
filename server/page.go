package server

import (
	"embed"
	"io/fs"
)

//go:embed assets
var assets embed.FS

// staticFS serves the page's script and stylesheet under /static/.
func staticFS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic("embedded assets missing: " + err.Error())
	}
	return sub
}

func indexHTML() []byte {
	data, err := assets.ReadFile("assets/index.html")
	if err != nil {
		panic("embedded index.html missing: " + err.Error())
	}
	return data
}
