package node_test

import (
	"testing"

	"github.com/ameshkov/nodeadmin/internal/node"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	require.Equal(t, []node.Kind{
		node.KindShadowsocks,
		node.KindVLESS,
		node.KindVMess,
		node.KindTrojan,
		node.KindTUIC,
		node.KindHysteria2,
		node.KindAnyTLS,
	}, node.Kinds())

	ks := node.Kinds()
	ks[0] = "changed"
	require.Equal(t, node.KindShadowsocks, node.Kinds()[0])

	require.True(t, node.KindTUIC.Known())
	require.False(t, node.Kind("socks5").Known())
}

func TestLegalValues(t *testing.T) {
	testCases := []struct {
		name     string
		kind     node.Kind
		field    node.Field
		expected []string
	}{{
		name:     "vless_security",
		kind:     node.KindVLESS,
		field:    node.FieldSecurity,
		expected: []string{"none", "tls", "reality"},
	}, {
		name:     "vmess_security",
		kind:     node.KindVMess,
		field:    node.FieldSecurity,
		expected: []string{"none", "tls"},
	}, {
		name:     "trojan_security",
		kind:     node.KindTrojan,
		field:    node.FieldSecurity,
		expected: []string{"tls"},
	}, {
		name:     "tuic_congestion",
		kind:     node.KindTUIC,
		field:    node.FieldCongestion,
		expected: []string{"bbr", "cubic", "new_reno"},
	}, {
		name:     "vless_transport",
		kind:     node.KindVLESS,
		field:    node.FieldTransport,
		expected: []string{"tcp", "websocket", "http2", "httpupgrade", "grpc", "xhttp"},
	}, {
		name:     "vmess_transport",
		kind:     node.KindVMess,
		field:    node.FieldTransport,
		expected: []string{"tcp", "websocket", "http2", "httpupgrade", "grpc"},
	}, {
		name:     "not_applicable",
		kind:     node.KindShadowsocks,
		field:    node.FieldTransport,
		expected: nil,
	}, {
		name:     "unknown_kind",
		kind:     "socks5",
		field:    node.FieldCipher,
		expected: nil,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, node.LegalValues(tc.kind, tc.field))
		})
	}
}

func TestLegalValues_copy(t *testing.T) {
	vals := node.LegalValues(node.KindVLESS, node.FieldSecurity)
	vals[0] = "changed"

	require.True(t, node.IsLegal(node.KindVLESS, node.FieldSecurity, node.SecurityNone))
	require.False(t, node.IsLegal(node.KindVLESS, node.FieldSecurity, "changed"))
}

func TestIsLegal(t *testing.T) {
	require.True(t, node.IsLegal(node.KindVLESS, node.FieldSecurity, node.SecurityReality))
	require.False(t, node.IsLegal(node.KindVMess, node.FieldSecurity, node.SecurityReality))
	require.False(t, node.IsLegal(node.KindTrojan, node.FieldSecurity, node.SecurityNone))
	require.True(t, node.IsLegal(node.KindAnyTLS, node.FieldFingerprint, "randomized"))
	require.False(t, node.IsLegal(node.KindShadowsocks, node.FieldFingerprint, "chrome"))
}

func TestLabel(t *testing.T) {
	testCases := []struct {
		token    string
		expected string
	}{{
		token:    "vless",
		expected: "VLESS",
	}, {
		token:    "websocket",
		expected: "WebSocket",
	}, {
		token:    "xtls-rprx-vision",
		expected: "XTLS Vision",
	}, {
		token:    "2022-blake3-aes-128-gcm",
		expected: "2022-BLAKE3-AES-128-GCM",
	}, {
		token:    "360",
		expected: "360",
	}, {
		token:    "unmapped-token",
		expected: "unmapped-token",
	}, {
		token:    "",
		expected: "",
	}}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			require.Equal(t, tc.expected, node.Label(tc.token))
		})
	}
}

func TestIsKeyedCipher(t *testing.T) {
	testCases := []struct {
		cipher    string
		wantKeyed bool
		wantLen   int
	}{{
		cipher:    node.CipherChaCha20IETFPoly1305,
		wantKeyed: false,
		wantLen:   0,
	}, {
		cipher:    node.CipherAES256GCM,
		wantKeyed: false,
		wantLen:   0,
	}, {
		cipher:    node.Cipher2022BLAKE3AES128GCM,
		wantKeyed: true,
		wantLen:   16,
	}, {
		cipher:    node.Cipher2022BLAKE3AES256GCM,
		wantKeyed: true,
		wantLen:   32,
	}, {
		cipher:    node.Cipher2022BLAKE3ChaCha20Poly1305,
		wantKeyed: true,
		wantLen:   32,
	}}

	for _, tc := range testCases {
		t.Run(tc.cipher, func(t *testing.T) {
			require.Equal(t, tc.wantKeyed, node.IsKeyedCipher(tc.cipher))
			require.Equal(t, tc.wantLen, node.KeyLength(tc.cipher))
		})
	}
}
