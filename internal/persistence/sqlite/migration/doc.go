// Package migration manages the SQLite schema for the booking service.
//
// Migration files are embedded .sql scripts named NNN_description.sql and are
// applied in version order inside individual transactions. Applied versions
// are recorded in the schema_migrations table so startup is idempotent.
package migration
