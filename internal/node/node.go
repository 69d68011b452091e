package node

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ServerNode is the edited state of a relay server node.
type ServerNode struct {
	// Name is the display name of the node.
	Name string `yaml:"name" json:"name"`

	// Address is the host or host:port clients connect to.
	Address string `yaml:"address" json:"address"`

	Country string `yaml:"country,omitempty" json:"country,omitempty"`
	City    string `yaml:"city,omitempty" json:"city,omitempty"`

	// Ratio is the traffic accounting ratio.  Blank means 1.
	Ratio Ratio `yaml:"ratio" json:"ratio"`

	// Protocols holds one slot per protocol kind, enabled or not.
	Protocols Slots `yaml:"protocols" json:"protocols"`
}

// NewServerNode returns a node with every protocol slot set to its defaults.
func NewServerNode() (n *ServerNode) {
	n = &ServerNode{
		Ratio:     RatioOf(defaultRatio),
		Protocols: Slots{},
	}
	n.Backfill()

	return n
}

// Backfill fills missing slots and zero-valued fields of existing slots with
// the defaults of their protocol kinds.  Slots of unknown kinds are removed.
func (n *ServerNode) Backfill() {
	if n.Protocols == nil {
		n.Protocols = Slots{}
	}

	for k := range n.Protocols {
		if !k.Known() {
			delete(n.Protocols, k)
		}
	}

	for _, k := range kinds {
		s := n.Protocols[k]
		switch {
		case s == nil:
			n.Protocols[k] = &Slot{Config: DefaultFor(k)}
		case s.Config == nil || s.Config.Kind() != k:
			s.Config = DefaultFor(k)
		default:
			s.Config.Backfill()
		}
	}
}

// Clone returns a deep copy of n.
func (n *ServerNode) Clone() (c *ServerNode) {
	c = &ServerNode{}
	*c = *n
	c.Protocols = make(Slots, len(n.Protocols))
	for k, s := range n.Protocols {
		if s == nil {
			continue
		}

		cp := &Slot{Port: s.Port}
		if s.Config != nil {
			cp.Config = s.Config.Clone()
		}

		c.Protocols[k] = cp
	}

	return c
}

// Slot is the edited state of one protocol listener.
type Slot struct {
	// Port is the listening port as typed.
	Port Port `yaml:"port" json:"port"`

	// Config is the protocol-specific part.  Its kind always matches the key
	// of the slot.
	Config ProtocolConfig `yaml:"settings" json:"settings"`
}

// Slots maps protocol kinds to their slots.
type Slots map[Kind]*Slot

// type check
var (
	_ json.Unmarshaler = (*Slots)(nil)
	_ yaml.Unmarshaler = (*Slots)(nil)
)

// UnmarshalJSON implements the json.Unmarshaler interface for *Slots.  The
// settings of each slot are decoded over the defaults of its kind.
func (s *Slots) UnmarshalJSON(b []byte) (err error) {
	var raw map[Kind]struct {
		Port     Port            `json:"port"`
		Settings json.RawMessage `json:"settings"`
	}

	err = json.Unmarshal(b, &raw)
	if err != nil {
		return err
	}

	slots := make(Slots, len(raw))
	for k, r := range raw {
		c := DefaultFor(k)
		if c == nil {
			return fmt.Errorf("unknown protocol %q", k)
		}

		if len(r.Settings) > 0 {
			if err = json.Unmarshal(r.Settings, c); err != nil {
				return fmt.Errorf("protocol %s: %w", k, err)
			}
		}

		slots[k] = &Slot{Port: r.Port, Config: c}
	}

	*s = slots

	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for *Slots.  The
// settings of each slot are decoded over the defaults of its kind.
func (s *Slots) UnmarshalYAML(n *yaml.Node) (err error) {
	var raw map[Kind]struct {
		Port     Port      `yaml:"port"`
		Settings yaml.Node `yaml:"settings"`
	}

	err = n.Decode(&raw)
	if err != nil {
		return err
	}

	slots := make(Slots, len(raw))
	for k, r := range raw {
		c := DefaultFor(k)
		if c == nil {
			return fmt.Errorf("line %d: unknown protocol %q", n.Line, k)
		}

		if !r.Settings.IsZero() {
			if err = r.Settings.Decode(c); err != nil {
				return fmt.Errorf("protocol %s: %w", k, err)
			}
		}

		slots[k] = &Slot{Port: r.Port, Config: c}
	}

	*s = slots

	return nil
}
