package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckDraft(t *testing.T) {
	testCases := []struct {
		name       string
		draft      string
		wantStatus int
		wantOut    []string
	}{{
		name: "valid",
		draft: `
node:
  name: ist-1
  address: ist-1.example.com
  protocols:
    shadowsocks:
      port: 8388
      settings:
        cipher: 2022-blake3-aes-128-gcm
        server_key: AAECAwQFBgcICQoLDA0ODw==
enabled: [shadowsocks]
`,
		wantStatus: statusSuccess,
		wantOut:    []string{`"type": "shadowsocks"`, `"port": 8388`, `"ratio": 1`},
	}, {
		name: "invalid",
		draft: `
node:
  address: ist-1.example.com
  protocols:
    shadowsocks:
      port: 8388
      settings:
        cipher: 2022-blake3-aes-128-gcm
enabled: [shadowsocks]
`,
		wantStatus: statusError,
		wantOut:    []string{"name: required", "protocols[shadowsocks].server_key: required"},
	}, {
		name:       "nothing_enabled",
		draft:      "node:\n  name: a\n  address: a.example\n",
		wantStatus: statusError,
		wantOut:    []string{"no valid protocol configured"},
	}, {
		name:       "unknown_kind",
		draft:      "enabled: [socks5]\n",
		wantStatus: statusError,
		wantOut:    []string{"unknown protocol kind"},
	}, {
		name:       "bad_yaml",
		draft:      "node: [",
		wantStatus: statusError,
		wantOut:    []string{"parsing draft"},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "draft.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.draft), 0o600))

			out := &bytes.Buffer{}
			status := checkDraft(out, path)
			require.Equal(t, tc.wantStatus, status)

			for _, s := range tc.wantOut {
				require.Contains(t, out.String(), s)
			}
		})
	}
}
