package node

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// Field validation errors.
const (
	ErrRequired        errors.Error = "required"
	ErrInvalidPort     errors.Error = "must be an integer between 1 and 65535"
	ErrInvalidRatio    errors.Error = "must be a non-negative decimal"
	ErrUnsupported     errors.Error = "unsupported value"
	ErrInvalidHost     errors.Error = "invalid host name"
	ErrInvalidPath     errors.Error = "must start with /"
	ErrInvalidKey      errors.Error = "invalid key"
	ErrInvalidShortID  errors.Error = "must be up to 16 hex digits of even length"
	ErrInvalidHopPorts errors.Error = "must be a comma-separated list of ports or port ranges"
	ErrNegative        errors.Error = "must not be negative"
)

// realityKeyLen is the length of the X25519 keys of the reality mode.
const realityKeyLen = 32

// maxShortIDLen is the maximum length of a hex-encoded reality short id.
const maxShortIDLen = 16

// Errors maps field paths, such as "protocols[vless].port", to the reason the
// field is invalid.  An empty Errors means the node is valid.
type Errors map[string]error

// type check
var _ json.Marshaler = Errors(nil)

// Paths returns the sorted field paths that have errors.
func (e Errors) Paths() (paths []string) {
	paths = make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	return paths
}

// MarshalJSON implements the json.Marshaler interface for Errors.
func (e Errors) MarshalJSON() (b []byte, err error) {
	reasons := make(map[string]string, len(e))
	for p, reason := range e {
		reasons[p] = reason.Error()
	}

	return json.Marshal(reasons)
}

// ProtocolPath returns the field path prefix of the slot of the protocol kind.
func ProtocolPath(k Kind) (path string) {
	return fmt.Sprintf("protocols[%s]", k)
}

// Validate checks the edited node and returns the errors of its fields.  Only
// the slots of the enabled protocol kinds are checked.  n is not modified.
func Validate(n *ServerNode, enabled *container.MapSet[Kind]) (errs Errors) {
	errs = Errors{}
	if n == nil {
		errs["name"] = ErrRequired
		errs["address"] = ErrRequired

		return errs
	}

	if strings.TrimSpace(n.Name) == "" {
		errs["name"] = ErrRequired
	}

	if strings.TrimSpace(n.Address) == "" {
		errs["address"] = ErrRequired
	}

	if _, ok := n.Ratio.Parse(); !ok && !n.Ratio.IsBlank() {
		errs["ratio"] = ErrInvalidRatio
	}

	for _, k := range kinds {
		if enabled == nil || !enabled.Has(k) {
			continue
		}

		v := &validator{errs: errs, kind: k, prefix: ProtocolPath(k)}
		s := n.Protocols[k]
		if s == nil || s.Config == nil || s.Config.Kind() != k {
			errs[v.prefix] = ErrRequired

			continue
		}

		v.port("port", s.Port)
		s.Config.validate(v)
	}

	return errs
}

// validator collects the errors of one protocol slot.
type validator struct {
	errs   Errors
	kind   Kind
	prefix string
}

// add records err for the field of the slot.
func (v *validator) add(field string, err error) {
	v.errs[v.prefix+"."+field] = err
}

// enum checks that value is legal for the field of the slot's kind.  ok is
// false if it is not, so that the dependent fields are not checked.
func (v *validator) enum(field string, f Field, value string) (ok bool) {
	if IsLegal(v.kind, f, value) {
		return true
	}

	v.add(field, ErrUnsupported)

	return false
}

// required checks that value is not blank.
func (v *validator) required(field, value string) (ok bool) {
	if strings.TrimSpace(value) != "" {
		return true
	}

	v.add(field, ErrRequired)

	return false
}

// port checks that p is a valid port number.
func (v *validator) port(field string, p Port) {
	switch {
	case p.IsBlank():
		v.add(field, ErrRequired)
	default:
		if _, ok := p.Parse(); !ok {
			v.add(field, ErrInvalidPort)
		}
	}
}

func (v *validator) transport(t *Transport) {
	if t == nil {
		v.add("transport.mode", ErrRequired)

		return
	}

	if !v.enum("transport.mode", FieldTransport, t.Mode) {
		return
	}

	switch {
	case t.usesHTTP():
		if t.Path != "" && !strings.HasPrefix(t.Path, "/") {
			v.add("transport.path", ErrInvalidPath)
		}

		if t.Host != "" && !isValidHost(t.Host) {
			v.add("transport.host", ErrInvalidHost)
		}
	case t.Mode == TransportGRPC:
		v.required("transport.service_name", t.ServiceName)
	}
}

func (v *validator) security(s *Security) {
	if s == nil {
		v.add("security.mode", ErrRequired)

		return
	}

	if !v.enum("security.mode", FieldSecurity, s.Mode) || s.Mode == SecurityNone {
		return
	}

	v.enum("security.fingerprint", FieldFingerprint, s.Fingerprint)
	if s.SNI != "" && !isValidHost(s.SNI) {
		v.add("security.sni", ErrInvalidHost)
	}

	if s.Mode == SecurityReality {
		v.reality(s.Reality)
	}
}

func (v *validator) reality(r *Reality) {
	if r == nil {
		r = &Reality{}
	}

	if v.required("security.reality.server_address", r.ServerAddress) && !isValidHost(r.ServerAddress) {
		v.add("security.reality.server_address", ErrInvalidHost)
	}

	v.port("security.reality.server_port", r.ServerPort)

	if v.required("security.reality.private_key", r.PrivateKey) && !isRealityKey(r.PrivateKey) {
		v.add("security.reality.private_key", ErrInvalidKey)
	}

	if v.required("security.reality.public_key", r.PublicKey) && !isRealityKey(r.PublicKey) {
		v.add("security.reality.public_key", ErrInvalidKey)
	}

	if v.required("security.reality.short_id", r.ShortID) && !isShortID(r.ShortID) {
		v.add("security.reality.short_id", ErrInvalidShortID)
	}
}

// validate implements the ProtocolConfig interface for *Shadowsocks.
func (c *Shadowsocks) validate(v *validator) {
	if !v.enum("cipher", FieldCipher, c.Cipher) || !IsKeyedCipher(c.Cipher) {
		return
	}

	if !v.required("server_key", c.ServerKey) {
		return
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.ServerKey))
	if err != nil || len(key) != KeyLength(c.Cipher) {
		v.add("server_key", ErrInvalidKey)
	}
}

// validate implements the ProtocolConfig interface for *VLESS.
func (c *VLESS) validate(v *validator) {
	v.enum("flow", FieldFlow, c.Flow)
	v.transport(c.Transport)
	v.security(c.Security)
}

// validate implements the ProtocolConfig interface for *VMess.
func (c *VMess) validate(v *validator) {
	v.transport(c.Transport)
	v.security(c.Security)
}

// validate implements the ProtocolConfig interface for *Trojan.
func (c *Trojan) validate(v *validator) {
	v.transport(c.Transport)
	v.security(c.Security)
}

// validate implements the ProtocolConfig interface for *TUIC.
func (c *TUIC) validate(v *validator) {
	v.enum("udp_relay_mode", FieldUDPRelayMode, c.UDPRelayMode)
	v.enum("congestion", FieldCongestion, c.Congestion)
	v.security(c.Security)
}

// validate implements the ProtocolConfig interface for *Hysteria2.
func (c *Hysteria2) validate(v *validator) {
	if _, err := parseHopPorts(c.HopPorts); err != nil {
		v.add("hop_ports", ErrInvalidHopPorts)
	}

	if c.HopInterval < 0 {
		v.add("hop_interval", ErrNegative)
	}

	v.security(c.Security)
}

// validate implements the ProtocolConfig interface for *AnyTLS.
func (c *AnyTLS) validate(v *validator) {
	v.security(c.Security)
}

// isValidHost returns true if host is an IP address or a valid domain name.
// Internationalized names are checked in their ASCII form.
func isValidHost(host string) (ok bool) {
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return false
	}

	_, ok = dns.IsDomainName(ascii)

	return ok
}

// isRealityKey returns true if key is a base64url-encoded X25519 key.
func isRealityKey(key string) (ok bool) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(key, "="))

	return err == nil && len(b) == realityKeyLen
}

// isShortID returns true if id is a valid hex-encoded reality short id.
func isShortID(id string) (ok bool) {
	if len(id) > maxShortIDLen || len(id)%2 != 0 {
		return false
	}

	_, err := hex.DecodeString(id)

	return err == nil
}

// portRange is an inclusive range of ports.
type portRange struct {
	lo, hi uint16
}

// String implements the fmt.Stringer interface for portRange.
func (r portRange) String() (s string) {
	if r.lo == r.hi {
		return strconv.Itoa(int(r.lo))
	}

	return fmt.Sprintf("%d-%d", r.lo, r.hi)
}

// parseHopPorts parses a comma-separated list of ports and port ranges.  An
// empty list is valid.
func parseHopPorts(s string) (ranges []portRange, err error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)

		loStr, hiStr, isRange := strings.Cut(part, "-")
		lo, ok := Port(loStr).Parse()
		if !ok {
			return nil, fmt.Errorf("bad port %q", loStr)
		}

		hi := lo
		if isRange {
			hi, ok = Port(hiStr).Parse()
			if !ok || hi < lo {
				return nil, fmt.Errorf("bad range %q", part)
			}
		}

		ranges = append(ranges, portRange{lo: lo, hi: hi})
	}

	return ranges, nil
}

// hopPortsCanonical returns the normalized text of a valid hop ports list and
// s itself otherwise.
func hopPortsCanonical(s string) (norm string) {
	ranges, err := parseHopPorts(s)
	if err != nil {
		return s
	}

	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, r.String())
	}

	return strings.Join(parts, ",")
}
