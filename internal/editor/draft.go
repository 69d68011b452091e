package editor

import (
	"fmt"
	"os"

	"github.com/ameshkov/nodeadmin/internal/node"
	"gopkg.in/yaml.v3"
)

// Draft is a serialized edit session.  It is what the admin API accepts and
// what --check reads from disk.
type Draft struct {
	// Node is the edited state.  Missing slots and fields are filled with
	// the defaults.
	Node *node.ServerNode `yaml:"node" json:"node"`

	// Enabled is the list of enabled protocol kinds.
	Enabled []node.Kind `yaml:"enabled" json:"enabled"`

	// ID is the id of the server being edited, zero for a new one.
	ID int64 `yaml:"id,omitempty" json:"id,omitempty"`
}

// LoadDraft reads a YAML draft from the file at path.
func LoadDraft(path string) (d *Draft, err error) {
	// #nosec G304 -- Trust the path to the draft file that is given from the
	// command-line.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}

	d = &Draft{}
	err = yaml.Unmarshal(b, d)
	if err != nil {
		return nil, fmt.Errorf("parsing draft: %w", err)
	}

	return d, nil
}
