package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one rankable item loaded from a documents file.
type Document struct {
	ID     string             `yaml:"id" json:"id"`
	Title  string             `yaml:"title,omitempty" json:"title,omitempty"`
	Text   string             `yaml:"text,omitempty" json:"text,omitempty"`
	Fields map[string]float64 `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// documentFile is the on-disk wrapper around a document list.
type documentFile struct {
	Documents []Document `yaml:"documents" json:"documents"`
}

// loadDocuments reads documents from a YAML or JSON file. The format is
// chosen by extension; anything that is not .json is parsed as YAML.
func loadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents file %s: %w", path, err)
	}

	var file documentFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse documents file %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse documents file %s: %w", path, err)
		}
	}

	if len(file.Documents) == 0 {
		return nil, fmt.Errorf("no documents found in %s", path)
	}
	for i, doc := range file.Documents {
		if doc.ID == "" {
			return nil, fmt.Errorf("document %d in %s has no id", i, path)
		}
	}

	return file.Documents, nil
}

// EmbedText returns the text a document is embedded under. Title and body
// are concatenated so short titles still contribute to similarity.
func (d Document) EmbedText() string {
	switch {
	case d.Title == "":
		return d.Text
	case d.Text == "":
		return d.Title
	default:
		return d.Title + "\n" + d.Text
	}
}
