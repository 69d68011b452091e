package node

// ProtocolConfig is the protocol-specific part of a listener.  It is
// implemented by the variant types of this package only: *Shadowsocks,
// *VLESS, *VMess, *Trojan, *TUIC, *Hysteria2 and *AnyTLS.
type ProtocolConfig interface {
	// Kind returns the protocol kind of the variant.
	Kind() (k Kind)

	// Backfill sets zero-valued selectors and missing sub-structures to their
	// defaults.
	Backfill()

	// Clone returns a deep copy of the config.
	Clone() (c ProtocolConfig)

	// canonical returns a deep copy with the fields that are irrelevant for
	// the current selectors removed.
	canonical() (c ProtocolConfig)

	// validate adds the errors of the config to v.
	validate(v *validator)
}

// type check
var (
	_ ProtocolConfig = (*Shadowsocks)(nil)
	_ ProtocolConfig = (*VLESS)(nil)
	_ ProtocolConfig = (*VMess)(nil)
	_ ProtocolConfig = (*Trojan)(nil)
	_ ProtocolConfig = (*TUIC)(nil)
	_ ProtocolConfig = (*Hysteria2)(nil)
	_ ProtocolConfig = (*AnyTLS)(nil)
)

// Transport is the transport layer of VLESS, VMess and Trojan listeners.
type Transport struct {
	// Mode is the transport mode, see the Transport* constants.
	Mode string `yaml:"mode" json:"mode"`

	// Host is the HTTP host of the websocket, http2, httpupgrade and xhttp
	// transports.
	Host string `yaml:"host,omitempty" json:"host,omitempty"`

	// Path is the HTTP path of the websocket, http2, httpupgrade and xhttp
	// transports.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// ServiceName is the service name of the grpc transport.
	ServiceName string `yaml:"service_name,omitempty" json:"service_name,omitempty"`
}

// usesHTTP returns true if the mode carries an HTTP host and path.
func (t *Transport) usesHTTP() (ok bool) {
	switch t.Mode {
	case TransportWebSocket, TransportHTTP2, TransportHTTPUpgrade, TransportXHTTP:
		return true
	default:
		return false
	}
}

func (t *Transport) clone() (c *Transport) {
	if t == nil {
		return nil
	}

	cp := *t

	return &cp
}

func (t *Transport) canonical() (c *Transport) {
	if t == nil {
		return nil
	}

	c = &Transport{Mode: t.Mode}
	switch {
	case t.usesHTTP():
		c.Host, c.Path = t.Host, t.Path
	case t.Mode == TransportGRPC:
		c.ServiceName = t.ServiceName
	}

	return c
}

// Security is the security layer of a listener.
type Security struct {
	// Mode is the security mode, see the Security* constants.
	Mode string `yaml:"mode" json:"mode"`

	// SNI is the server name presented in the TLS handshake.
	SNI string `yaml:"sni,omitempty" json:"sni,omitempty"`

	// Fingerprint is the TLS client fingerprint to imitate.
	Fingerprint string `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`

	// AllowInsecure disables certificate verification on clients.
	AllowInsecure bool `yaml:"allow_insecure" json:"allow_insecure"`

	// Reality holds the key exchange parameters of the reality mode.  It is
	// only present for kinds that support reality.
	Reality *Reality `yaml:"reality,omitempty" json:"reality,omitempty"`
}

func (s *Security) clone() (c *Security) {
	if s == nil {
		return nil
	}

	cp := *s
	if s.Reality != nil {
		r := *s.Reality
		cp.Reality = &r
	}

	return &cp
}

func (s *Security) canonical() (c *Security) {
	if s == nil {
		return nil
	}

	c = &Security{Mode: s.Mode}
	if s.Mode == SecurityNone {
		return c
	}

	c.SNI = s.SNI
	c.Fingerprint = s.Fingerprint
	c.AllowInsecure = s.AllowInsecure
	if s.Mode == SecurityReality && s.Reality != nil {
		r := *s.Reality
		r.ServerPort = r.ServerPort.normalize()
		c.Reality = &r
	}

	return c
}

// backfill fills the zero-valued fields of s with the defaults of the kind.
func (s *Security) backfill(k Kind) {
	if s.Mode == "" {
		s.Mode = defaultValue(k, FieldSecurity)
	}

	if s.Fingerprint == "" {
		s.Fingerprint = defaultValue(k, FieldFingerprint)
	}

	if s.Reality == nil && IsLegal(k, FieldSecurity, SecurityReality) {
		s.Reality = &Reality{}
	}
}

// Reality is the key exchange configuration of the reality security mode.
type Reality struct {
	// ServerAddress is the address of the server whose TLS handshake is
	// borrowed.
	ServerAddress string `yaml:"server_address" json:"server_address"`

	// ServerPort is the port of the borrowed server.
	ServerPort Port `yaml:"server_port" json:"server_port"`

	// PrivateKey is the X25519 private key of the listener.
	PrivateKey string `yaml:"private_key" json:"private_key"`

	// PublicKey is the X25519 public key handed to clients.
	PublicKey string `yaml:"public_key" json:"public_key"`

	// ShortID is the short connection id, hex encoded.
	ShortID string `yaml:"short_id" json:"short_id"`
}

// Shadowsocks is the configuration of a Shadowsocks listener.
type Shadowsocks struct {
	// Cipher is the AEAD cipher.
	Cipher string `yaml:"cipher" json:"cipher"`

	// ServerKey is the base64-encoded pre-shared key of the 2022 ciphers.
	ServerKey string `yaml:"server_key,omitempty" json:"server_key,omitempty"`
}

// Kind implements the ProtocolConfig interface for *Shadowsocks.
func (c *Shadowsocks) Kind() (k Kind) { return KindShadowsocks }

// Backfill implements the ProtocolConfig interface for *Shadowsocks.
func (c *Shadowsocks) Backfill() {
	if c.Cipher == "" {
		c.Cipher = defaultValue(KindShadowsocks, FieldCipher)
	}
}

// Clone implements the ProtocolConfig interface for *Shadowsocks.
func (c *Shadowsocks) Clone() (cp ProtocolConfig) {
	ss := *c

	return &ss
}

// canonical implements the ProtocolConfig interface for *Shadowsocks.
func (c *Shadowsocks) canonical() (cp ProtocolConfig) {
	ss := &Shadowsocks{Cipher: c.Cipher}
	if IsKeyedCipher(c.Cipher) {
		ss.ServerKey = c.ServerKey
	}

	return ss
}

// VLESS is the configuration of a VLESS listener.
type VLESS struct {
	// Flow is the flow control mode.
	Flow string `yaml:"flow" json:"flow"`

	Transport *Transport `yaml:"transport" json:"transport"`
	Security  *Security  `yaml:"security" json:"security"`
}

// Kind implements the ProtocolConfig interface for *VLESS.
func (c *VLESS) Kind() (k Kind) { return KindVLESS }

// Backfill implements the ProtocolConfig interface for *VLESS.
func (c *VLESS) Backfill() {
	if c.Flow == "" {
		c.Flow = defaultValue(KindVLESS, FieldFlow)
	}

	c.Transport = backfillTransport(KindVLESS, c.Transport)
	c.Security = backfillSecurity(KindVLESS, c.Security)
}

// Clone implements the ProtocolConfig interface for *VLESS.
func (c *VLESS) Clone() (cp ProtocolConfig) {
	return &VLESS{
		Flow:      c.Flow,
		Transport: c.Transport.clone(),
		Security:  c.Security.clone(),
	}
}

// canonical implements the ProtocolConfig interface for *VLESS.
func (c *VLESS) canonical() (cp ProtocolConfig) {
	return &VLESS{
		Flow:      c.Flow,
		Transport: c.Transport.canonical(),
		Security:  c.Security.canonical(),
	}
}

// VMess is the configuration of a VMess listener.
type VMess struct {
	Transport *Transport `yaml:"transport" json:"transport"`
	Security  *Security  `yaml:"security" json:"security"`
}

// Kind implements the ProtocolConfig interface for *VMess.
func (c *VMess) Kind() (k Kind) { return KindVMess }

// Backfill implements the ProtocolConfig interface for *VMess.
func (c *VMess) Backfill() {
	c.Transport = backfillTransport(KindVMess, c.Transport)
	c.Security = backfillSecurity(KindVMess, c.Security)
}

// Clone implements the ProtocolConfig interface for *VMess.
func (c *VMess) Clone() (cp ProtocolConfig) {
	return &VMess{Transport: c.Transport.clone(), Security: c.Security.clone()}
}

// canonical implements the ProtocolConfig interface for *VMess.
func (c *VMess) canonical() (cp ProtocolConfig) {
	return &VMess{Transport: c.Transport.canonical(), Security: c.Security.canonical()}
}

// Trojan is the configuration of a Trojan listener.
type Trojan struct {
	Transport *Transport `yaml:"transport" json:"transport"`
	Security  *Security  `yaml:"security" json:"security"`
}

// Kind implements the ProtocolConfig interface for *Trojan.
func (c *Trojan) Kind() (k Kind) { return KindTrojan }

// Backfill implements the ProtocolConfig interface for *Trojan.
func (c *Trojan) Backfill() {
	c.Transport = backfillTransport(KindTrojan, c.Transport)
	c.Security = backfillSecurity(KindTrojan, c.Security)
}

// Clone implements the ProtocolConfig interface for *Trojan.
func (c *Trojan) Clone() (cp ProtocolConfig) {
	return &Trojan{Transport: c.Transport.clone(), Security: c.Security.clone()}
}

// canonical implements the ProtocolConfig interface for *Trojan.
func (c *Trojan) canonical() (cp ProtocolConfig) {
	return &Trojan{Transport: c.Transport.canonical(), Security: c.Security.canonical()}
}

// TUIC is the configuration of a TUIC listener.
type TUIC struct {
	// UDPRelayMode is the way UDP packets are relayed.
	UDPRelayMode string `yaml:"udp_relay_mode" json:"udp_relay_mode"`

	// Congestion is the congestion controller.
	Congestion string `yaml:"congestion" json:"congestion"`

	// DisableSNI disables sending SNI on clients.
	DisableSNI bool `yaml:"disable_sni" json:"disable_sni"`

	// ReduceRTT enables 0-RTT handshakes.
	ReduceRTT bool `yaml:"reduce_rtt" json:"reduce_rtt"`

	Security *Security `yaml:"security" json:"security"`
}

// Kind implements the ProtocolConfig interface for *TUIC.
func (c *TUIC) Kind() (k Kind) { return KindTUIC }

// Backfill implements the ProtocolConfig interface for *TUIC.
func (c *TUIC) Backfill() {
	if c.UDPRelayMode == "" {
		c.UDPRelayMode = defaultValue(KindTUIC, FieldUDPRelayMode)
	}

	if c.Congestion == "" {
		c.Congestion = defaultValue(KindTUIC, FieldCongestion)
	}

	c.Security = backfillSecurity(KindTUIC, c.Security)
}

// Clone implements the ProtocolConfig interface for *TUIC.
func (c *TUIC) Clone() (cp ProtocolConfig) {
	t := *c
	t.Security = c.Security.clone()

	return &t
}

// canonical implements the ProtocolConfig interface for *TUIC.
func (c *TUIC) canonical() (cp ProtocolConfig) {
	t := *c
	t.Security = c.Security.canonical()

	return &t
}

// defaultHopInterval is the default port hopping interval of Hysteria2
// listeners in seconds.
const defaultHopInterval = 30

// Hysteria2 is the configuration of a Hysteria2 listener.
type Hysteria2 struct {
	// ObfsPassword is the salamander obfuscation password.  Obfuscation is
	// off when it is empty.
	ObfsPassword string `yaml:"obfs_password,omitempty" json:"obfs_password,omitempty"`

	// HopPorts is the comma-separated list of ports and port ranges used for
	// port hopping, e.g. "20000-30000,443".
	HopPorts string `yaml:"hop_ports,omitempty" json:"hop_ports,omitempty"`

	// HopInterval is the port hopping interval in seconds.
	HopInterval int `yaml:"hop_interval" json:"hop_interval"`

	Security *Security `yaml:"security" json:"security"`
}

// Kind implements the ProtocolConfig interface for *Hysteria2.
func (c *Hysteria2) Kind() (k Kind) { return KindHysteria2 }

// Backfill implements the ProtocolConfig interface for *Hysteria2.
func (c *Hysteria2) Backfill() {
	c.Security = backfillSecurity(KindHysteria2, c.Security)
}

// Clone implements the ProtocolConfig interface for *Hysteria2.
func (c *Hysteria2) Clone() (cp ProtocolConfig) {
	h := *c
	h.Security = c.Security.clone()

	return &h
}

// canonical implements the ProtocolConfig interface for *Hysteria2.
func (c *Hysteria2) canonical() (cp ProtocolConfig) {
	h := *c
	h.HopPorts = hopPortsCanonical(c.HopPorts)
	if h.HopPorts == "" {
		h.HopInterval = 0
	}

	h.Security = c.Security.canonical()

	return &h
}

// AnyTLS is the configuration of an AnyTLS listener.
type AnyTLS struct {
	Security *Security `yaml:"security" json:"security"`
}

// Kind implements the ProtocolConfig interface for *AnyTLS.
func (c *AnyTLS) Kind() (k Kind) { return KindAnyTLS }

// Backfill implements the ProtocolConfig interface for *AnyTLS.
func (c *AnyTLS) Backfill() {
	c.Security = backfillSecurity(KindAnyTLS, c.Security)
}

// Clone implements the ProtocolConfig interface for *AnyTLS.
func (c *AnyTLS) Clone() (cp ProtocolConfig) {
	return &AnyTLS{Security: c.Security.clone()}
}

// canonical implements the ProtocolConfig interface for *AnyTLS.
func (c *AnyTLS) canonical() (cp ProtocolConfig) {
	return &AnyTLS{Security: c.Security.canonical()}
}

func backfillTransport(k Kind, t *Transport) (res *Transport) {
	if t == nil {
		t = &Transport{}
	}

	if t.Mode == "" {
		t.Mode = defaultValue(k, FieldTransport)
	}

	return t
}

func backfillSecurity(k Kind, s *Security) (res *Security) {
	if s == nil {
		s = &Security{}
	}

	s.backfill(k)

	return s
}
