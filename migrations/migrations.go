// Package migrations embeds the SQL schema so the binary can migrate a database
// without the repository checked out next to it.
package migrations

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgresql/*.sql mysql/*.sql
var files embed.FS

// dirs maps a database/sql driver name to its migration directory.
var dirs = map[string]string{
	"postgres": "postgresql",
	"mysql":    "mysql",
}

// Source returns a golang-migrate source over the embedded migrations for driver.
func Source(driver string) (source.Driver, error) {
	dir, ok := dirs[driver]
	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	return iofs.New(files, dir)
}
