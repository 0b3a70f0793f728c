// Package web embeds the HTML templates and static assets served by the form UI.
package web

import "embed"

//go:embed templates/*.html static/*
var FS embed.FS
