package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"triage-backend/internal/shared/telemetry"
)

// Manifest describes a bundle on disk. Model is relative to the manifest.
type Manifest struct {
	Model      string   `json:"model"`
	Vocabulary []string `json:"vocabulary"`
	Labels     []string `json:"labels"`
	Input      string   `json:"input"`
	Output     string   `json:"output"`
}

// ModelOpener builds a Model from a manifest and the resolved model path.
type ModelOpener func(m Manifest, modelPath string) (Model, error)

// ReadManifest parses and validates the manifest at path.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, ErrNoBundle
		}
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	m.Model = strings.TrimSpace(m.Model)
	if m.Model == "" {
		return Manifest{}, fmt.Errorf("manifest: model is required")
	}
	if err := checkUnique("vocabulary", m.Vocabulary); err != nil {
		return Manifest{}, err
	}
	if err := checkUnique("labels", m.Labels); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Load reads the bundle at manifestPath and opens its model with open. It
// never fails: any problem yields Absent with the cause.
func Load(manifestPath string, open ModelOpener) State {
	if strings.TrimSpace(manifestPath) == "" {
		return absent(manifestPath, ErrNoBundle)
	}
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return absent(manifestPath, err)
	}
	modelPath := m.Model
	if !filepath.IsAbs(modelPath) {
		modelPath = filepath.Join(filepath.Dir(manifestPath), modelPath)
	}
	model, err := open(m, modelPath)
	if err != nil {
		return absent(manifestPath, err)
	}
	loaded, err := NewLoaded(m.Vocabulary, model, m.Labels)
	if err != nil {
		return absent(manifestPath, err)
	}
	telemetry.Info("classifier.loaded", map[string]any{
		"bundle":     manifestPath,
		"vocabulary": len(loaded.Vocabulary),
		"labels":     len(loaded.Labels),
	})
	return loaded
}

func absent(path string, err error) State {
	telemetry.Warn("classifier.absent", map[string]any{
		"bundle": path,
		"reason": err.Error(),
	})
	return Absent{Reason: err}
}
