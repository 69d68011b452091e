package node

import (
	"github.com/IGLOU-EU/go-wildcard"
)

// Field is the name of an enumerated protocol setting.
type Field string

// Enumerated protocol settings.
const (
	FieldCipher       Field = "cipher"
	FieldFlow         Field = "flow"
	FieldTransport    Field = "transport"
	FieldSecurity     Field = "security"
	FieldFingerprint  Field = "fingerprint"
	FieldCongestion   Field = "congestion"
	FieldUDPRelayMode Field = "udp_relay_mode"
)

// fields is the list of all enumerated settings.
var fields = []Field{
	FieldCipher,
	FieldFlow,
	FieldTransport,
	FieldSecurity,
	FieldFingerprint,
	FieldCongestion,
	FieldUDPRelayMode,
}

// Fields returns all enumerated protocol settings.  Use LegalValues to find
// out which of them apply to a protocol kind.
func Fields() (fs []Field) {
	return append([]Field(nil), fields...)
}

// Shadowsocks ciphers.
const (
	CipherChaCha20IETFPoly1305       = "chacha20-ietf-poly1305"
	CipherAES128GCM                  = "aes-128-gcm"
	CipherAES256GCM                  = "aes-256-gcm"
	Cipher2022BLAKE3AES128GCM        = "2022-blake3-aes-128-gcm"
	Cipher2022BLAKE3AES256GCM        = "2022-blake3-aes-256-gcm"
	Cipher2022BLAKE3ChaCha20Poly1305 = "2022-blake3-chacha20-poly1305"
)

// keyedCipherPattern matches the ciphers that require a pre-shared server key.
const keyedCipherPattern = "2022-blake3-*"

// VLESS flow control modes.
const (
	FlowNone   = "none"
	FlowVision = "xtls-rprx-vision"
)

// Transport modes.
const (
	TransportTCP         = "tcp"
	TransportWebSocket   = "websocket"
	TransportHTTP2       = "http2"
	TransportHTTPUpgrade = "httpupgrade"
	TransportGRPC        = "grpc"
	TransportXHTTP       = "xhttp"
)

// Security modes.
const (
	SecurityNone    = "none"
	SecurityTLS     = "tls"
	SecurityReality = "reality"
)

// FingerprintChrome is the default TLS fingerprint.
const FingerprintChrome = "chrome"

// TUIC congestion controllers.
const (
	CongestionBBR     = "bbr"
	CongestionCubic   = "cubic"
	CongestionNewReno = "new_reno"
)

// TUIC UDP relay modes.
const (
	UDPRelayNative = "native"
	UDPRelayQUIC   = "quic"
)

var fingerprints = []string{
	FingerprintChrome,
	"firefox",
	"safari",
	"ios",
	"android",
	"edge",
	"360",
	"qq",
	"random",
	"randomized",
}

var (
	// fullTransports are the transports of protocols negotiating the full
	// transport set.
	fullTransports = []string{
		TransportTCP,
		TransportWebSocket,
		TransportHTTP2,
		TransportHTTPUpgrade,
		TransportGRPC,
	}

	tlsOnly = []string{SecurityTLS}
)

// legalValues is the per-kind, per-field table of legal values.  The first
// value of each list is the default.
var legalValues = map[Kind]map[Field][]string{
	KindShadowsocks: {
		FieldCipher: {
			CipherChaCha20IETFPoly1305,
			CipherAES128GCM,
			CipherAES256GCM,
			Cipher2022BLAKE3AES128GCM,
			Cipher2022BLAKE3AES256GCM,
			Cipher2022BLAKE3ChaCha20Poly1305,
		},
	},
	KindVLESS: {
		FieldFlow:        {FlowNone, FlowVision},
		FieldTransport:   append(append([]string(nil), fullTransports...), TransportXHTTP),
		FieldSecurity:    {SecurityNone, SecurityTLS, SecurityReality},
		FieldFingerprint: fingerprints,
	},
	KindVMess: {
		FieldTransport:   fullTransports,
		FieldSecurity:    {SecurityNone, SecurityTLS},
		FieldFingerprint: fingerprints,
	},
	KindTrojan: {
		FieldTransport:   {TransportTCP, TransportWebSocket, TransportGRPC},
		FieldSecurity:    tlsOnly,
		FieldFingerprint: fingerprints,
	},
	KindTUIC: {
		FieldCongestion:   {CongestionBBR, CongestionCubic, CongestionNewReno},
		FieldUDPRelayMode: {UDPRelayNative, UDPRelayQUIC},
		FieldSecurity:     tlsOnly,
		FieldFingerprint:  fingerprints,
	},
	KindHysteria2: {
		FieldSecurity:    tlsOnly,
		FieldFingerprint: fingerprints,
	},
	KindAnyTLS: {
		FieldSecurity:    tlsOnly,
		FieldFingerprint: fingerprints,
	},
}

// labels maps tokens to their display text.  Tokens missing here are
// displayed as is.
var labels = map[string]string{
	string(KindShadowsocks): "Shadowsocks",
	string(KindVLESS):       "VLESS",
	string(KindVMess):       "VMess",
	string(KindTrojan):      "Trojan",
	string(KindTUIC):        "TUIC",
	string(KindHysteria2):   "Hysteria2",
	string(KindAnyTLS):      "AnyTLS",

	CipherChaCha20IETFPoly1305:       "ChaCha20-IETF-Poly1305",
	CipherAES128GCM:                  "AES-128-GCM",
	CipherAES256GCM:                  "AES-256-GCM",
	Cipher2022BLAKE3AES128GCM:        "2022-BLAKE3-AES-128-GCM",
	Cipher2022BLAKE3AES256GCM:        "2022-BLAKE3-AES-256-GCM",
	Cipher2022BLAKE3ChaCha20Poly1305: "2022-BLAKE3-ChaCha20-Poly1305",

	FlowNone:   "None",
	FlowVision: "XTLS Vision",

	TransportTCP:         "TCP",
	TransportWebSocket:   "WebSocket",
	TransportHTTP2:       "HTTP/2",
	TransportHTTPUpgrade: "HTTPUpgrade",
	TransportGRPC:        "gRPC",
	TransportXHTTP:       "XHTTP",

	SecurityTLS:     "TLS",
	SecurityReality: "Reality",

	FingerprintChrome: "Chrome",
	"firefox":         "Firefox",
	"safari":          "Safari",
	"ios":             "iOS",
	"android":         "Android",
	"edge":            "Edge",
	"random":          "Random",
	"randomized":      "Randomized",

	CongestionBBR:     "BBR",
	CongestionCubic:   "CUBIC",
	CongestionNewReno: "NewReno",

	UDPRelayNative: "Native",
	UDPRelayQUIC:   "QUIC",
}

// LegalValues returns the ordered legal values of field for the protocol kind.
// It returns nil if the field does not apply to the kind.
func LegalValues(k Kind, f Field) (values []string) {
	vals, ok := legalValues[k][f]
	if !ok {
		return nil
	}

	return append([]string(nil), vals...)
}

// IsLegal returns true if value is one of the legal values of field for the
// protocol kind.
func IsLegal(k Kind, f Field, value string) (ok bool) {
	for _, v := range legalValues[k][f] {
		if v == value {
			return true
		}
	}

	return false
}

// defaultValue returns the default value of field for the protocol kind or an
// empty string if the field does not apply to the kind.
func defaultValue(k Kind, f Field) (value string) {
	vals := legalValues[k][f]
	if len(vals) == 0 {
		return ""
	}

	return vals[0]
}

// Label returns the display text for the token.  Unknown tokens are returned
// unchanged.
func Label(token string) (text string) {
	if l, ok := labels[token]; ok {
		return l
	}

	return token
}

// IsKeyedCipher returns true if the Shadowsocks cipher belongs to the 2022
// family that requires a pre-shared server key.
func IsKeyedCipher(cipher string) (ok bool) {
	return wildcard.MatchSimple(keyedCipherPattern, cipher)
}

// KeyLength returns the length in bytes of the server key required by the
// cipher or 0 if the cipher takes no server key.
func KeyLength(cipher string) (n int) {
	switch {
	case !IsKeyedCipher(cipher):
		return 0
	case cipher == Cipher2022BLAKE3AES128GCM:
		return 16
	default:
		return 32
	}
}
