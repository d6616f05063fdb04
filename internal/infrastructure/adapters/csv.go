package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/collection"
	"go.uber.org/zap"
)

// CSVSource is the source label of CSV candidates
const CSVSource = "csv"

// CSVConfig configures the CSV import adapter
type CSVConfig struct {
	Paths     []string // files or glob patterns
	Delimiter string
}

// CSVAdapter reads operator-supplied CSV exports of businesses
type CSVAdapter struct {
	cfg    CSVConfig
	logger *zap.Logger
}

var _ collection.Adapter = (*CSVAdapter)(nil)

// NewCSVAdapter creates a CSV adapter
func NewCSVAdapter(cfg CSVConfig, logger *zap.Logger) *CSVAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVAdapter{cfg: cfg, logger: logger.With(zap.String("adapter", CSVSource))}
}

// Name implements collection.Adapter
func (a *CSVAdapter) Name() string { return CSVSource }

// Fetch implements collection.Adapter. A file that cannot be read as CSV
// is skipped; the adapter fails when no file could be read.
func (a *CSVAdapter) Fetch(ctx context.Context, yield collection.YieldFunc) error {
	files, err := a.files()
	if err != nil {
		return err
	}
	var failures []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := a.readFile(ctx, path, yield)
		var ye *yieldError
		switch {
		case err == nil:
		case errors.As(err, &ye):
			return ye.err
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			a.logger.Warn("Failed to read CSV file", zap.String("path", path), zap.Error(err))
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 && len(failures) == len(files) {
		return fmt.Errorf("no CSV file could be read: %w", errors.Join(failures...))
	}
	return nil
}

func (a *CSVAdapter) files() ([]string, error) {
	var out []string
	for _, pattern := range a.cfg.Paths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid csv path %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			a.logger.Warn("CSV path matched no files", zap.String("path", pattern))
		}
		out = append(out, matches...)
	}
	return out, nil
}

type yieldError struct{ err error }

func (e *yieldError) Error() string { return e.err.Error() }
func (e *yieldError) Unwrap() error { return e.err }

func (a *CSVAdapter) readFile(ctx context.Context, path string, yield collection.YieldFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return a.read(ctx, f, path, yield)
}

func (a *CSVAdapter) read(ctx context.Context, r io.Reader, path string, yield collection.YieldFunc) error {
	var delim rune
	if a.cfg.Delimiter != "" {
		delim, _ = utf8.DecodeRuneInString(a.cfg.Delimiter)
	}
	p, err := newCSVParser(r, delim)
	if err != nil {
		return err
	}
	if !p.hasHeader("name") {
		return fmt.Errorf("%s: missing name column", path)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := p.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			a.logger.Warn("Skipping malformed CSV row", zap.String("path", path), zap.Error(err))
			continue
		}
		if row.empty() {
			continue
		}
		c, err := rowCandidate(row, path)
		if err != nil {
			a.logger.Warn("Skipping CSV row",
				zap.String("path", path), zap.Int("line", row.Line), zap.Error(err))
			continue
		}
		if err := yield(c); err != nil {
			return &yieldError{err: err}
		}
	}
}

func rowCandidate(row csvRow, path string) (business.Candidate, error) {
	name := row.get("name")
	if name == "" {
		return business.Candidate{}, errors.New("name is empty")
	}
	c := business.Candidate{
		Name:        name,
		IslandText:  row.get("island"),
		Industry:    row.get("industry"),
		Address:     row.get("address"),
		Phone:       row.get("phone"),
		Website:     row.get("website"),
		Description: truncate(row.get("description")),
		Source:      CSVSource,
		SourceURL:   row.get("source_url"),
	}
	if c.SourceURL == "" {
		c.SourceURL = "file://" + filepath.ToSlash(path)
	}
	if raw := strings.ReplaceAll(row.get("employee_count"), ",", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return business.Candidate{}, fmt.Errorf("invalid employee_count %q", row.get("employee_count"))
		}
		c.EmployeeCountEstimate = &n
	}
	return c, nil
}
