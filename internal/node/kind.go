// Package node contains the multi-protocol server node configuration model:
// the protocol catalog, per-kind defaults, validation of the edited state and
// its reduction to a submission.
package node

// Kind is the protocol kind of a listener a server node can expose.
type Kind string

// Supported protocol kinds.
const (
	KindShadowsocks Kind = "shadowsocks"
	KindVLESS       Kind = "vless"
	KindVMess       Kind = "vmess"
	KindTrojan      Kind = "trojan"
	KindTUIC        Kind = "tuic"
	KindHysteria2   Kind = "hysteria2"
	KindAnyTLS      Kind = "anytls"
)

// kinds is the catalog order of the protocol kinds.  Submissions always list
// protocols in this order.
var kinds = []Kind{
	KindShadowsocks,
	KindVLESS,
	KindVMess,
	KindTrojan,
	KindTUIC,
	KindHysteria2,
	KindAnyTLS,
}

// Kinds returns all supported protocol kinds in catalog order.
func Kinds() (ks []Kind) {
	return append([]Kind(nil), kinds...)
}

// Known returns true if k is one of the supported protocol kinds.
func (k Kind) Known() (ok bool) {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}

	return false
}

// String implements the fmt.Stringer interface for Kind.
func (k Kind) String() (s string) {
	return string(k)
}
