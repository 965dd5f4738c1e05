package cms

import (
	"io/fs"

	"github.com/goliatone/go-cms-community/internal/migrations"
)

// MigrationsFS returns the embedded SQL migrations, one directory per dialect.
func MigrationsFS() fs.FS {
	return migrations.FS()
}
