package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- Migration: {{.Name}}
-- Description: {{.Description}}

`

const downTemplate = `-- Migration: {{.Name}} (Rollback)

`

var (
	nonWord    = regexp.MustCompile(`[^a-z0-9]+`)
	dropped    = regexp.MustCompile(`[^a-z0-9 _-]+`)
	fileSuffix = regexp.MustCompile(`^(.+)\.(up|down)\.sql$`)
)

// MigrationFile is a newly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair named with the current
// UTC timestamp so files sort in creation order
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := time.Now().UTC().Format("20060102150405")
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		UpPath:      filepath.Join(dir, version+"_"+base+".up.sql"),
		DownPath:    filepath.Join(dir, version+"_"+base+".down.sql"),
	}
	if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, err
	}
	if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeTemplate(path, text string, mf *MigrationFile) error {
	tmpl := template.Must(template.New(filepath.Base(path)).Parse(text))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, mf); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases name and joins its words with underscores
func sanitizeName(name string) string {
	s := dropped.ReplaceAllString(strings.ToLower(name), "")
	return strings.Trim(nonWord.ReplaceAllString(s, "_"), "_")
}

// ListMigrations returns the base name of every migration in fsys, sorted.
// It fails when an up file has no down file or the other way round.
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	halves := make(map[string]map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileSuffix.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if halves[m[1]] == nil {
			halves[m[1]] = map[string]bool{}
		}
		halves[m[1]][m[2]] = true
	}

	names := make([]string, 0, len(halves))
	var unpaired []string
	for name, h := range halves {
		if !h["up"] || !h["down"] {
			unpaired = append(unpaired, name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(unpaired) > 0 {
		sort.Strings(unpaired)
		return names, fmt.Errorf("migrations without both up and down files: %s", strings.Join(unpaired, ", "))
	}
	return names, nil
}
