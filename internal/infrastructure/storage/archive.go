// Package storage archives the raw candidates each adapter yields.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/hawaiibiz/intel/internal/domain/business"
)

// ContentType of archived batches
const ContentType = "application/x-ndjson"

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9_-]+`)

var errEmptyAdapter = errors.New("adapter name is required")

// Key is the object key of one adapter's batch in a run:
// runs/<run-id>/<adapter>.jsonl
func Key(runID uuid.UUID, adapter string) (string, error) {
	name := unsafeKeyChars.ReplaceAllString(strings.ToLower(adapter), "_")
	if name == "" || name == "_" {
		return "", errEmptyAdapter
	}
	return path.Join("runs", runID.String(), name+".jsonl"), nil
}

// encodeLines writes one JSON candidate per line
func encodeLines(candidates []business.Candidate) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range candidates {
		if err := enc.Encode(&candidates[i]); err != nil {
			return nil, fmt.Errorf("encode candidate %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
