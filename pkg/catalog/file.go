package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// fileDocument is the on-disk shape shared by all formats:
//
//	[[entry]]
//	id = 12
//	name = "people-counter"
//	kan_id = "model-b5cc4e1d"
//	kind = "model"
type fileDocument struct {
	Entries []Entry `json:"entries" toml:"entry" yaml:"entries"`
}

// LoadFile reads a catalog from a .toml, .yaml/.yml or .json file.
func LoadFile(path string) (*Memory, error) {
	if err := errs.ValidateCatalogPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes catalog data in the format named by ext (".toml", ".yaml",
// ".yml" or ".json"). JSON accepts either {"entries": [...]} or a bare array.
func Parse(data []byte, ext string) (*Memory, error) {
	var doc fileDocument
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse toml catalog")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse yaml catalog")
		}
	case ".json":
		trimmed := bytes.TrimSpace(data)
		var err error
		if len(trimmed) > 0 && trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &doc.Entries)
		} else {
			err = json.Unmarshal(trimmed, &doc)
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse json catalog")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported catalog format %q", ext)
	}

	if err := check(doc.Entries); err != nil {
		return nil, err
	}
	return NewMemory(doc.Entries...), nil
}

func check(entries []Entry) error {
	for i, e := range entries {
		if e.Name == "" {
			return errs.New(errs.ErrCodeInvalidFormat, "catalog entry %d has no name", i)
		}
		if _, err := skill.ParseKind(string(e.Kind)); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "catalog entry %s", e.Name)
		}
	}
	return nil
}
