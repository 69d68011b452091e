package node_test

import (
	"testing"

	"github.com/ameshkov/nodeadmin/internal/node"
	"github.com/stretchr/testify/require"
)

func TestDefaultFor(t *testing.T) {
	testCases := []struct {
		kind     node.Kind
		expected node.ProtocolConfig
	}{{
		kind: node.KindShadowsocks,
		expected: &node.Shadowsocks{
			Cipher: node.CipherChaCha20IETFPoly1305,
		},
	}, {
		kind: node.KindVLESS,
		expected: &node.VLESS{
			Flow:      node.FlowNone,
			Transport: &node.Transport{Mode: node.TransportTCP},
			Security: &node.Security{
				Mode:        node.SecurityNone,
				Fingerprint: node.FingerprintChrome,
				Reality:     &node.Reality{},
			},
		},
	}, {
		kind: node.KindVMess,
		expected: &node.VMess{
			Transport: &node.Transport{Mode: node.TransportTCP},
			Security: &node.Security{
				Mode:        node.SecurityNone,
				Fingerprint: node.FingerprintChrome,
			},
		},
	}, {
		kind: node.KindTrojan,
		expected: &node.Trojan{
			Transport: &node.Transport{Mode: node.TransportTCP},
			Security: &node.Security{
				Mode:        node.SecurityTLS,
				Fingerprint: node.FingerprintChrome,
			},
		},
	}, {
		kind: node.KindTUIC,
		expected: &node.TUIC{
			UDPRelayMode: node.UDPRelayNative,
			Congestion:   node.CongestionBBR,
			Security: &node.Security{
				Mode:        node.SecurityTLS,
				Fingerprint: node.FingerprintChrome,
			},
		},
	}, {
		kind: node.KindHysteria2,
		expected: &node.Hysteria2{
			HopInterval: 30,
			Security: &node.Security{
				Mode:        node.SecurityTLS,
				Fingerprint: node.FingerprintChrome,
			},
		},
	}, {
		kind: node.KindAnyTLS,
		expected: &node.AnyTLS{
			Security: &node.Security{
				Mode:        node.SecurityTLS,
				Fingerprint: node.FingerprintChrome,
			},
		},
	}}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			c := node.DefaultFor(tc.kind)
			require.Equal(t, tc.expected, c)
			require.Equal(t, tc.kind, c.Kind())

			// Deterministic, but never shared.
			again := node.DefaultFor(tc.kind)
			require.Equal(t, c, again)
			require.NotSame(t, c, again)
		})
	}
}

func TestDefaultFor_unknown(t *testing.T) {
	require.Nil(t, node.DefaultFor("socks5"))
}

func TestDefaultFor_independent(t *testing.T) {
	a := node.DefaultFor(node.KindVLESS).(*node.VLESS)
	b := node.DefaultFor(node.KindVLESS).(*node.VLESS)

	a.Security.Mode = node.SecurityReality
	a.Security.Reality.ShortID = "abcd"
	a.Transport.Mode = node.TransportGRPC

	require.Equal(t, node.SecurityNone, b.Security.Mode)
	require.Empty(t, b.Security.Reality.ShortID)
	require.Equal(t, node.TransportTCP, b.Transport.Mode)
}

func TestBackfill(t *testing.T) {
	c := &node.VLESS{Security: &node.Security{Mode: node.SecurityTLS, SNI: "example.org"}}
	c.Backfill()

	require.Equal(t, &node.VLESS{
		Flow:      node.FlowNone,
		Transport: &node.Transport{Mode: node.TransportTCP},
		Security: &node.Security{
			Mode:        node.SecurityTLS,
			SNI:         "example.org",
			Fingerprint: node.FingerprintChrome,
			Reality:     &node.Reality{},
		},
	}, c)
}

func TestNewServerNode(t *testing.T) {
	n := node.NewServerNode()

	require.Equal(t, node.Ratio("1"), n.Ratio)
	require.Len(t, n.Protocols, len(node.Kinds()))
	for _, k := range node.Kinds() {
		s := n.Protocols[k]
		require.NotNil(t, s)
		require.Equal(t, node.DefaultFor(k), s.Config)
		require.True(t, s.Port.IsBlank())
	}
}

func TestServerNode_Backfill(t *testing.T) {
	n := &node.ServerNode{
		Name: "n",
		Protocols: node.Slots{
			node.KindTrojan: {Port: "443", Config: &node.VLESS{}},
			node.KindTUIC:   {Port: "8443", Config: &node.TUIC{Congestion: node.CongestionCubic}},
			"socks5":        {Port: "1080"},
		},
	}
	n.Backfill()

	require.Len(t, n.Protocols, len(node.Kinds()))
	require.NotContains(t, n.Protocols, node.Kind("socks5"))

	// Mismatched configs are replaced, the typed port is kept.
	require.Equal(t, node.Port("443"), n.Protocols[node.KindTrojan].Port)
	require.Equal(t, node.DefaultFor(node.KindTrojan), n.Protocols[node.KindTrojan].Config)

	tuic := n.Protocols[node.KindTUIC].Config.(*node.TUIC)
	require.Equal(t, node.CongestionCubic, tuic.Congestion)
	require.Equal(t, node.UDPRelayNative, tuic.UDPRelayMode)
	require.NotNil(t, tuic.Security)
}
