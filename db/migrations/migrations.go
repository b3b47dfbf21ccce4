// Package migrations holds the SQL schema of the experiment store.
package migrations

import "embed"

// FS contains the numbered up/down scripts read through the iofs source.
//
//go:embed *.sql
var FS embed.FS

// Version is the schema version the service expects. Bump it together with
// every new migration pair.
const Version uint = 1
