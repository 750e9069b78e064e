// Package migrations embeds the goose SQL migrations so the server and the
// migrate tool carry the schema inside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
