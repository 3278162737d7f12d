// Package migrations embeds the postgres schema migrations so the server and
// the migrate command can run them without a checkout of this directory.
package migrations

import "embed"

// FS holds the numbered golang-migrate files
//
//go:embed *.sql
var FS embed.FS
