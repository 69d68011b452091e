package node

import (
	"encoding/json"
	"fmt"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
)

// ErrNoValidProtocol is returned by Reduce when no enabled protocol has a
// valid port.
const ErrNoValidProtocol errors.Error = "no valid protocol configured"

// Submission is the reduced server node handed to persistence.  It contains
// only the enabled protocols with valid ports, in catalog order.
type Submission struct {
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Country   string     `json:"country"`
	City      string     `json:"city"`
	Ratio     float64    `json:"ratio"`
	Protocols []Protocol `json:"protocols"`
}

// Kinds returns the protocol kinds of the submission in order.
func (s *Submission) Kinds() (ks []Kind) {
	for _, p := range s.Protocols {
		ks = append(ks, p.Config.Kind())
	}

	return ks
}

// Protocol is a listener of a submitted server node.
type Protocol struct {
	// Config is the canonical protocol-specific part.  It must not be nil.
	Config ProtocolConfig

	// Port is the listening port.
	Port uint16
}

// type check
var (
	_ json.Marshaler   = Protocol{}
	_ json.Unmarshaler = (*Protocol)(nil)
)

// protocolJSON is the JSON form of a Protocol.
type protocolJSON struct {
	Type     Kind            `json:"type"`
	Port     uint16          `json:"port"`
	Settings json.RawMessage `json:"settings"`
}

// MarshalJSON implements the json.Marshaler interface for Protocol.
func (p Protocol) MarshalJSON() (b []byte, err error) {
	if p.Config == nil {
		return nil, errors.Error("protocol config is nil")
	}

	settings, err := json.Marshal(p.Config)
	if err != nil {
		return nil, err
	}

	return json.Marshal(protocolJSON{
		Type:     p.Config.Kind(),
		Port:     p.Port,
		Settings: settings,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface for *Protocol.  The
// settings are decoded as is, without defaults.
func (p *Protocol) UnmarshalJSON(b []byte) (err error) {
	var raw protocolJSON
	err = json.Unmarshal(b, &raw)
	if err != nil {
		return err
	}

	c := zeroFor(raw.Type)
	if c == nil {
		return fmt.Errorf("unknown protocol %q", raw.Type)
	}

	if len(raw.Settings) > 0 {
		if err = json.Unmarshal(raw.Settings, c); err != nil {
			return fmt.Errorf("protocol %s: %w", raw.Type, err)
		}
	}

	*p = Protocol{Config: c, Port: raw.Port}

	return nil
}

// Reduce returns the submission of the edited node: the slots of the enabled
// kinds that have valid ports, in catalog order, with the fields irrelevant
// for their selectors removed.  It returns ErrNoValidProtocol if no slot is
// kept.  n is not modified.
func Reduce(n *ServerNode, enabled *container.MapSet[Kind]) (sub *Submission, err error) {
	if n == nil || enabled == nil {
		return nil, ErrNoValidProtocol
	}

	var protos []Protocol
	for _, k := range kinds {
		if !enabled.Has(k) {
			continue
		}

		s := n.Protocols[k]
		if s == nil || s.Config == nil || s.Config.Kind() != k {
			continue
		}

		port, ok := s.Port.Parse()
		if !ok {
			continue
		}

		protos = append(protos, Protocol{Config: s.Config.canonical(), Port: port})
	}

	if len(protos) == 0 {
		return nil, ErrNoValidProtocol
	}

	return &Submission{
		Name:      n.Name,
		Address:   n.Address,
		Country:   n.Country,
		City:      n.City,
		Ratio:     n.Ratio.Value(),
		Protocols: protos,
	}, nil
}

// FromSubmission returns the edited state of a persisted submission: a fully
// populated node and the set of its enabled protocol kinds.
func FromSubmission(sub *Submission) (n *ServerNode, enabled *container.MapSet[Kind]) {
	n = &ServerNode{
		Name:      sub.Name,
		Address:   sub.Address,
		Country:   sub.Country,
		City:      sub.City,
		Ratio:     RatioOf(sub.Ratio),
		Protocols: Slots{},
	}

	enabled = container.NewMapSet[Kind]()
	for _, p := range sub.Protocols {
		if p.Config == nil || !p.Config.Kind().Known() {
			continue
		}

		k := p.Config.Kind()
		n.Protocols[k] = &Slot{Port: PortOf(p.Port), Config: p.Config.Clone()}
		enabled.Add(k)
	}

	n.Backfill()

	return n, enabled
}
