package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kbility/taxassist/internal/document"
)

// Handoff is a read-once cell carrying one extraction result across a
// process restart. Put writes the value; Take returns it and clears it, so
// a second Take in the same session sees nothing.
type Handoff struct {
	path string
}

func NewHandoff(dir string) *Handoff {
	return &Handoff{path: filepath.Join(dir, "handoff.json")}
}

// Put stores the result, replacing any pending value.
func (h *Handoff) Put(res document.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal handoff: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write handoff: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("write handoff: %w", err)
	}
	return nil
}

// Take consumes the pending value. It returns (nil, nil) when no value is
// pending. The value is removed before it is returned, so a crash between
// read and use drops the handoff rather than replaying it.
func (h *Handoff) Take() (*document.Result, error) {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read handoff: %w", err)
	}
	if err := os.Remove(h.path); err != nil {
		return nil, fmt.Errorf("clear handoff: %w", err)
	}
	var res document.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode handoff: %w", err)
	}
	return &res, nil
}
