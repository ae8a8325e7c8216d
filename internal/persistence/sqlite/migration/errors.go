package migration

import "errors"

var (
	// ErrInvalidFileName is returned when a migration file does not follow the
	// NNN_description.sql naming convention.
	ErrInvalidFileName = errors.New("migration: invalid file name")
	// ErrDuplicateVersion is returned when two migration files share a version prefix.
	ErrDuplicateVersion = errors.New("migration: duplicate version")
	// ErrEmptyMigration is returned when a migration file contains no SQL statements.
	ErrEmptyMigration = errors.New("migration: empty migration file")
)
