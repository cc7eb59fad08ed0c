package probe

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/usctl/oemcore/oemerr"
)

//go:embed catalog.json
var catalogFS embed.FS

// catalogEntry is one row of the embedded probe definition catalog.
type catalogEntry struct {
	Name string `json:"name"`
	NElem int `json:"n_elem"`
	PitchMM float64 `json:"pitch_mm"`
}

// Lookup resolves a probe name against the embedded catalog and
// constructs a Probe for it, the way session.Open resolves
// probeName+adapterTag before any hardware is touched.
func Lookup(name string, nOEM int, adapter Adapter) (*Probe, error) {
	data, err := catalogFS.ReadFile("catalog.json")
	if err != nil {
		return nil, fmt.Errorf("read probe catalog: %w", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse probe catalog: %w", err)
	}

	for _, e := range entries {
		if e.Name == name {
			return New(e.Name, e.NElem, e.PitchMM/1000, nOEM, adapter)
		}
	}
	return nil, oemerr.NewIllegalArgument("probeName", "unknown probe %q", name)
}
