package auth

import (
	"io/fs"

	"github.com/goliatone/go-persistence-bun"
)

// MigrationsDir is the embedded root holding dialect migrations.
const MigrationsDir = "data/sql/migrations"

// RegisterModels registers the auth models with the persistence layer
// so relation metadata is available before queries run.
func RegisterModels() {
	persistence.RegisterModel((*User)(nil))
	persistence.RegisterModel((*VerificationToken)(nil))
}

// Migrations returns the embedded migration sources rooted at the
// dialect directories.
func Migrations() (fs.FS, error) {
	return fs.Sub(GetMigrationsFS(), MigrationsDir)
}
