package gameplan

import (
	"encoding/json"
	"os"
	"path/filepath"

	"helmsman/internal/logger"
)

// Loader reads the gameplan document from disk and runs it through the
// validator. A missing file is not an error, it is the absent-plan rejection.
type Loader struct {
	Path      string
	Validator *Validator
}

func NewLoader(path string, v *Validator) *Loader {
	return &Loader{Path: path, Validator: v}
}

func (l *Loader) Load() Result {
	raw, err := os.ReadFile(l.Path)
	if err != nil {
		logger.Warnf("gameplan read failed (%s): %v", l.Path, err)
		return l.Validator.Validate(nil)
	}
	return l.Validator.Validate(raw)
}

// PersistFallback writes the canonical safe default to path so the degraded
// plan that actually ran is inspectable after the fact. Write is atomic
// (tmp file + rename) so a crash never leaves a torn artifact.
func PersistFallback(path string, reason string) error {
	plan := SafeDefault()
	artifact := struct {
		Gameplan
		RejectionReason string `json:"rejection_reason"`
	}{Gameplan: plan, RejectionReason: reason}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".gameplan-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
