package migration

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration represents a single schema migration parsed from an embedded file.
type Migration struct {
	Version     string
	Description string
	SQL         string
	FileName    string
}

var fileNamePattern = regexp.MustCompile(`^(\d{3})_([a-z0-9_]+)\.sql$`)

// ScanMigrations returns all embedded migrations ordered by version.
func ScanMigrations() ([]Migration, error) {
	return scanFS(migrationFiles, "migrations")
}

func scanFS(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	seen := make(map[string]string, len(entries))
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		matches := fileNamePattern.FindStringSubmatch(name)
		if matches == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFileName, name)
		}

		version, description := matches[1], matches[2]
		if previous, ok := seen[version]; ok {
			return nil, fmt.Errorf("%w: %s conflicts with %s", ErrDuplicateVersion, name, previous)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyMigration, name)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(description, "_", " "),
			SQL:         string(content),
			FileName:    name,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}
