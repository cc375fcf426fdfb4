// Package migrations embeds the SQL applied by db.OpenSQLite, in version order.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
