// Package source reads digest JSON files into SourceDocuments.
package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
)

var (
	// ErrNotFound is returned when an input file does not exist.
	ErrNotFound = errors.New("input file not found")
	// ErrInvalidJSON is returned when an input file cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNoInputs is returned when discovery finds nothing to merge.
	ErrNoInputs = errors.New("no input files")
)

// Discover lists the .json files directly inside dir, sorted by name. The
// file at exclude (usually the merge output) is skipped.
func Discover(dir, exclude string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read input dir %s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}

	excludeAbs := ""
	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			excludeAbs = abs
		}
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if excludeAbs != "" {
			if abs, err := filepath.Abs(path); err == nil && abs == excludeAbs {
				continue
			}
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("discover %s: %w", dir, ErrNoInputs)
	}
	return paths, nil
}

// Load reads and decodes one file. The source is named after its path.
func Load(path string) (*models.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(filepath.ToSlash(path), data)
}

// LoadAll loads paths with at most workers files in flight. The result keeps
// the order of paths; the first error aborts the whole load.
func LoadAll(ctx context.Context, paths []string, workers int) ([]*models.SourceDocument, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	if workers <= 0 {
		workers = 1
	}

	docs := make([]*models.SourceDocument, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Load(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Decode parses a digest document. Comments and trailing commas are
// tolerated; numbers are kept as json.Number so ranks and counts round-trip
// unchanged. metadata and executive_summary with an unexpected shape are
// treated as empty; the audit sections are kept as they are.
func Decode(name string, data []byte) (*models.SourceDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", name, ErrInvalidJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode %s: %w: trailing data after document", name, ErrInvalidJSON)
	}
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode %s: %w: top level is not an object", name, ErrInvalidJSON)
	}

	sum := blake3.Sum256(data)
	doc := &models.SourceDocument{
		Name:             name,
		Digest:           hex.EncodeToString(sum[:]),
		Metadata:         objectOrEmpty(top["metadata"]),
		ExecutiveSummary: objectOrEmpty(top["executive_summary"]),
		DiscardedItems:   top["discarded_items"],
		Analytics:        top["analytics"],
		QualityAssurance: top["quality_assurance"],
	}

	if list, ok := top["items"].([]any); ok {
		doc.Items = make([]map[string]any, len(list))
		for i, e := range list {
			if m, ok := e.(map[string]any); ok {
				doc.Items[i] = m
			}
		}
	}
	return doc, nil
}

func objectOrEmpty(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
