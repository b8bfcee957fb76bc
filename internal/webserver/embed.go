package webserver

import "embed"

// Embedded holds translations and email views under embedded/translations and embedded/views
//
//go:embed embedded
var Embedded embed.FS
