// Package artifact reads and writes the JSON document a scan produces.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/resource"
	"github.com/guptam/altimeter/pkg/scan"
)

// ErrDuplicateResource is returned when an artifact holds two resources with
// the same id.
var ErrDuplicateResource = errors.New("duplicate resource id")

// Artifact is one scan's output: the resources of an account plus the
// records that failed to parse. Times are unix seconds.
type Artifact struct {
	Name      string              `json:"name"`
	Version   string              `json:"version"`
	StartTime int64               `json:"start_time"`
	EndTime   int64               `json:"end_time"`
	AccountID string              `json:"account_id"`
	Resources []resource.Resource `json:"resources"`
	Errors    []string            `json:"errors"`
}

// New builds an artifact from a scan result.
func New(name, version, accountID string, start, end time.Time, res *scan.Result) *Artifact {
	a := &Artifact{
		Name:      name,
		Version:   version,
		StartTime: start.Unix(),
		EndTime:   end.Unix(),
		AccountID: accountID,
		Resources: make([]resource.Resource, 0),
		Errors:    make([]string, 0),
	}
	if res == nil {
		return a
	}
	a.Resources = append(a.Resources, res.Resources...)
	for _, e := range res.Errors {
		a.Errors = append(a.Errors, e.Error())
	}
	return a
}

// Duration returns how long the scan took.
func (a *Artifact) Duration() time.Duration {
	return time.Duration(a.EndTime-a.StartTime) * time.Second
}

// Validate checks that resource ids are unique.
func (a *Artifact) Validate() error {
	seen := make(map[string]int, len(a.Resources))
	for i, r := range a.Resources {
		if j, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: %s at %d and %d", ErrDuplicateResource, r.ID, j, i)
		}
		seen[r.ID] = i
	}
	return nil
}

// Encode writes a as indented JSON.
func (a *Artifact) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// Decode reads an artifact.
func Decode(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &a, nil
}

// Write stores a at path. The file is replaced atomically so a watcher never
// sees a partial document.
func Write(path string, a *Artifact) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := a.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	logging.Debug("wrote artifact", "path", path, "resources", len(a.Resources), "errors", len(a.Errors))
	return nil
}

// Read loads and validates the artifact at path.
func Read(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
