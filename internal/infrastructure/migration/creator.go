package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// File describes a created up/down migration pair
type File struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair into dir, versioned by the
// current timestamp so lexical order matches creation order.
func CreateMigration(dir, name, description string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("migration: create dir: %w", err)
	}

	now := time.Now()
	f := &File{
		Version: now.Format("20060102150405"),
		Name:    name,
	}
	base := f.Version + "_" + slugify(name)
	f.UpPath = filepath.Join(dir, base+upSuffix)
	f.DownPath = filepath.Join(dir, base+downSuffix)

	up := header(name, description, now) + "-- Write your UP migration SQL here\n"
	if err := os.WriteFile(f.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("migration: write %s: %w", f.UpPath, err)
	}

	down := header(name+" (Rollback)", "Rollback for "+description, now) + "-- Write your DOWN migration SQL here\n"
	if err := os.WriteFile(f.DownPath, []byte(down), 0o644); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, fmt.Errorf("migration: write %s: %w", f.DownPath, err)
	}

	return f, nil
}

func header(name, description string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Migration: %s\n", name)
	fmt.Fprintf(&b, "-- Created: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "-- Description: %s\n\n", description)
	return b.String()
}

// slugify lowercases a migration name and collapses separators to single
// underscores, dropping anything else.
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of migration pairs in dir, sorted
// by version. A missing directory is treated as empty.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("migration: read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), upSuffix); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}
