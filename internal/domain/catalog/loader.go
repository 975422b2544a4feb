package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// Format is the serialisation of a catalog document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.Newf(errors.ErrCodeCatalogFormatUnknown, "cannot infer catalog format from %q", path)
}

// document is the on-disk shape.  JSON catalogs may also be a bare array of
// entries, in which case the version is derived from the content.
type document struct {
	Version string  `yaml:"version" json:"version"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

// Parse decodes a catalog document.  It does not validate; see Load.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogParseFailed, "failed to decode YAML catalog")
		}
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &doc.Entries); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCatalogParseFailed, "failed to decode JSON catalog")
			}
			break
		}
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCatalogParseFailed, "failed to decode JSON catalog")
		}
	default:
		return nil, errors.Newf(errors.ErrCodeCatalogFormatUnknown, "unsupported catalog format %q", format)
	}
	if len(doc.Entries) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "catalog has no entries")
	}
	return New(doc.Version, doc.Entries), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sources
// ─────────────────────────────────────────────────────────────────────────────

// Source supplies the raw catalog document.  Concrete storage (file, embedded
// resource, object store) lives behind it.
type Source interface {
	Fetch(ctx context.Context) ([]byte, Format, error)
	Describe() string
}

// FileSource reads a catalog from the local filesystem.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(_ context.Context) ([]byte, Format, error) {
	format, err := FormatFromPath(s.Path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(err, errors.ErrCodeCatalogNotFound, "catalog file not found").WithDetail(s.Path)
		}
		return nil, "", errors.Wrap(err, errors.ErrCodeInternal, "failed to read catalog file").WithDetail(s.Path)
	}
	return data, format, nil
}

// Describe implements Source.
func (s FileSource) Describe() string { return "file:" + s.Path }

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// Fetch implements Source.
func (EmbeddedSource) Fetch(_ context.Context) ([]byte, Format, error) {
	return defaultCatalogYAML, FormatYAML, nil
}

// Describe implements Source.
func (EmbeddedSource) Describe() string { return "embedded:default_catalog.yaml" }

// LoadOptions controls Load.
type LoadOptions struct {
	// Strict rejects catalogs with error-level validation issues.
	Strict bool
}

// Load fetches, parses and validates a catalog.  The returned issues include
// warnings even when loading succeeds.
func Load(ctx context.Context, src Source, opts LoadOptions) (*Catalog, []Issue, error) {
	data, format, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	cat, err := Parse(data, format)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeUnknown, "failed to load catalog").WithDetail(src.Describe())
	}
	issues := cat.Validate()
	if opts.Strict {
		if verr := ValidationError(issues); verr != nil {
			return nil, issues, verr
		}
	}
	return cat, issues, nil
}

// LoadFile is Load over a FileSource with strict validation.
func LoadFile(path string) (*Catalog, error) {
	cat, _, err := Load(context.Background(), FileSource{Path: path}, LoadOptions{Strict: true})
	return cat, err
}

// Default returns the embedded default catalog.  It panics if the embedded
// document is invalid, which a unit test guards against.
func Default() *Catalog {
	cat, _, err := Load(context.Background(), EmbeddedSource{}, LoadOptions{Strict: true})
	if err != nil {
		panic("catalog: embedded default catalog is invalid: " + err.Error())
	}
	return cat
}

//Personal.AI order the ending
