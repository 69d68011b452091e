package node

// DefaultFor returns a new, fully populated configuration of the protocol kind
// with every field set to its default.  It returns nil for unknown kinds.
func DefaultFor(k Kind) (c ProtocolConfig) {
	c = zeroFor(k)
	if c == nil {
		return nil
	}

	if h, ok := c.(*Hysteria2); ok {
		h.HopInterval = defaultHopInterval
	}

	c.Backfill()

	return c
}

// zeroFor returns an empty configuration of the protocol kind.  It returns nil
// for unknown kinds.
func zeroFor(k Kind) (c ProtocolConfig) {
	switch k {
	case KindShadowsocks:
		return &Shadowsocks{}
	case KindVLESS:
		return &VLESS{}
	case KindVMess:
		return &VMess{}
	case KindTrojan:
		return &Trojan{}
	case KindTUIC:
		return &TUIC{}
	case KindHysteria2:
		return &Hysteria2{}
	case KindAnyTLS:
		return &AnyTLS{}
	default:
		return nil
	}
}
