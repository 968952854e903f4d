package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)
	nonWordPattern       = regexp.MustCompile(`[^a-z0-9]+`)
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}} ({{.Direction}})
-- Created: {{.Timestamp}}

`))

// MigrationFile is a created up/down pair
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Entry is one migration version found in a source
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// CreateMigration writes the next sequential up/down pair into dir
func CreateMigration(dir, name string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	mf := &MigrationFile{
		Version:  next,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := writeMigrationFile(mf.UpPath, slug, "up", now); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(mf.DownPath, slug, "down", now); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigrationFile(path, name, direction, ts string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return fileTemplate.Execute(f, map[string]string{
		"Name":      name,
		"Direction": direction,
		"Timestamp": ts,
	})
}

func sanitizeName(name string) string {
	return strings.Trim(nonWordPattern.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// ListMigrations returns the versions in fsys sorted ascending
func ListMigrations(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := map[uint]*Entry{}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := migrationFilePattern.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		e, ok := byVersion[uint(v)]
		if !ok {
			e = &Entry{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = e
		}
		if m[3] == "down" {
			e.HasDown = true
		}
	}

	out := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
