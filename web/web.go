// Package web embeds the HTML templates rendered by the public handlers.
package web

import "embed"

//go:embed template/*.html
var Templates embed.FS
