package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Schemes []domain.CatalogEntry `json:"schemes" yaml:"schemes"`
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	return decodeYAML(defaultCatalog)
}

// FileSource reads a JSON or YAML catalog file. The format is chosen by
// extension; anything other than .yaml/.yml is parsed as JSON.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeYAML(data []byte) ([]domain.CatalogEntry, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode yaml catalog: %w", err)
	}
	return f.Schemes, nil
}

func decodeJSON(data []byte) ([]domain.CatalogEntry, error) {
	var f catalogFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode json catalog: %w", err)
	}
	return f.Schemes, nil
}

// Load reads all entries from src and builds the index.
func Load(ctx context.Context, src domain.CatalogSource) (*Catalog, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(entries)
}
