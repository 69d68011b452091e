package config

import (
	"fmt"
	"net/netip"

	"github.com/ameshkov/nodeadmin/internal/adminsrv"
)

// Admin represents the admin API section of the configuration file.
type Admin struct {
	// ListenAddr is the IP address the admin API will listen to.
	ListenAddr string `yaml:"listen-addr"`

	// ListenPort is the port of the admin API.  If 0, a random port is used.
	ListenPort uint16 `yaml:"listen-port"`
}

// ToAdminConfig transforms the configuration to the internal adminsrv.Config
// that keeps committed servers in st.
func (f *File) ToAdminConfig(st adminsrv.Store) (adminCfg *adminsrv.Config, err error) {
	if f.Admin == nil {
		return nil, fmt.Errorf("admin config is empty")
	}

	addr, err := netip.ParseAddr(f.Admin.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("parse admin listen addr: %w", err)
	}

	return &adminsrv.Config{
		Store:      st,
		ListenAddr: netip.AddrPortFrom(addr, f.Admin.ListenPort),
	}, nil
}
