// Package migrations embebe los scripts SQL versionados para golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
