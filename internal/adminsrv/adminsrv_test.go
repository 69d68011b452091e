package adminsrv_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"path/filepath"
	"testing"

	"github.com/AdguardTeam/golibs/log"
	"github.com/ameshkov/nodeadmin/internal/adminsrv"
	"github.com/ameshkov/nodeadmin/internal/node"
	"github.com/ameshkov/nodeadmin/internal/store"
	"github.com/stretchr/testify/require"
)

// testDraft is a valid draft with two enabled protocols.
const testDraft = `{
	"node": {
		"name": "waw-1",
		"address": "waw-1.example.com",
		"ratio": "1",
		"protocols": {
			"shadowsocks": {"port": 8388},
			"trojan": {"port": "443", "settings": {"security": {"sni": "waw-1.example.com"}}},
			"vmess": {"port": "nope"}
		}
	},
	"enabled": ["trojan", "shadowsocks"]
}`

func newTestServer(t *testing.T) (s *adminsrv.Server) {
	t.Helper()

	st, err := store.Open(&store.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })

	s, err = adminsrv.New(&adminsrv.Config{
		Store:      st,
		ListenAddr: netip.MustParseAddrPort("127.0.0.1:0"),
	})
	require.NoError(t, err)

	return s
}

// do performs a request against the handler of s and returns the status and
// the body.
func do(t *testing.T, s *adminsrv.Server, method, path, body string) (code int, resp []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, r)
	rw := httptest.NewRecorder()
	s.Handler().ServeHTTP(rw, req)

	return rw.Code, rw.Body.Bytes()
}

func TestServer_catalog(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, code)

	var resp struct {
		Kinds []struct {
			Fields map[string][]struct {
				Value string `json:"value"`
				Label string `json:"label"`
			} `json:"fields"`
			Kind  string `json:"kind"`
			Label string `json:"label"`
		} `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Kinds, len(node.Kinds()))

	vless := resp.Kinds[1]
	require.Equal(t, "vless", vless.Kind)
	require.Equal(t, "VLESS", vless.Label)
	require.Len(t, vless.Fields["security"], 3)
	require.Equal(t, "reality", vless.Fields["security"][2].Value)
	require.Equal(t, "Reality", vless.Fields["security"][2].Label)
	require.NotContains(t, vless.Fields, "cipher")
}

func TestServer_defaults(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/defaults/hysteria2", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{
		"port": "",
		"settings": {
			"hop_interval": 30,
			"security": {
				"mode": "tls",
				"fingerprint": "chrome",
				"allow_insecure": false
			}
		}
	}`, string(body))

	code, _ = do(t, s, http.MethodGet, "/defaults/socks5", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestServer_validate(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/servers/validate", testDraft)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"errors": {}}`, string(body))

	code, body = do(t, s, http.MethodPost, "/servers/validate", `{
		"node": {"name": "", "address": "x.example", "protocols": {"tuic": {"port": "0"}}},
		"enabled": ["tuic"]
	}`)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"errors": {
		"name": "required",
		"protocols[tuic].port": "must be an integer between 1 and 65535"
	}}`, string(body))

	code, _ = do(t, s, http.MethodPost, "/servers/validate", `{"enabled": ["socks5"]}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/servers/validate", `{`)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestServer_lifecycle(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/servers", testDraft)
	require.Equal(t, http.StatusCreated, code)

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.Positive(t, created.ID)

	path := fmt.Sprintf("/servers/%d", created.ID)
	code, body = do(t, s, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, code)

	sub := &node.Submission{}
	require.NoError(t, json.Unmarshal(body, sub))
	require.Equal(t, "waw-1", sub.Name)
	require.Equal(t, []node.Kind{node.KindShadowsocks, node.KindTrojan}, sub.Kinds())

	code, _ = do(t, s, http.MethodPut, path, `{
		"node": {"name": "waw-2", "address": "waw-2.example.com", "protocols": {"anytls": {"port": 443}}},
		"enabled": ["anytls"]
	}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, s, http.MethodGet, "/servers", "")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		Servers []struct {
			Server *node.Submission `json:"server"`
			ID     int64            `json:"id"`
		} `json:"servers"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Servers, 1)
	require.Equal(t, created.ID, list.Servers[0].ID)
	require.Equal(t, "waw-2", list.Servers[0].Server.Name)
	require.Equal(t, []node.Kind{node.KindAnyTLS}, list.Servers[0].Server.Kinds())

	code, _ = do(t, s, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, s, http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodPut, path, testDraft)
	require.Equal(t, http.StatusNotFound, code)

	code, body = do(t, s, http.MethodGet, "/servers", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"servers": []}`, string(body))
}

func TestServer_commitRefused(t *testing.T) {
	s := newTestServer(t)

	testCases := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{{
		name: "invalid",
		body: `{
			"node": {"name": "n", "address": "n.example", "protocols": {"vless": {"port": "x"}}},
			"enabled": ["vless"]
		}`,
		wantCode: http.StatusUnprocessableEntity,
		wantBody: `{"errors": {"protocols[vless].port": "must be an integer between 1 and 65535"}}`,
	}, {
		name:     "nothing_enabled",
		body:     `{"node": {"name": "n", "address": "n.example"}}`,
		wantCode: http.StatusUnprocessableEntity,
		wantBody: `{"error": "no valid protocol configured"}`,
	}, {
		name:     "bad_json",
		body:     `[]`,
		wantCode: http.StatusBadRequest,
		wantBody: "",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, s, http.MethodPost, "/servers", tc.body)
			require.Equal(t, tc.wantCode, code)

			if tc.wantBody != "" {
				require.JSONEq(t, tc.wantBody, string(body))
			}
		})
	}
}

func TestServer_badID(t *testing.T) {
	s := newTestServer(t)

	code, _ := do(t, s, http.MethodGet, "/servers/abc", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodDelete, "/servers/-1", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestServer_Start(t *testing.T) {
	s := newTestServer(t)
	require.Nil(t, s.Addr())

	err := s.Start()
	require.NoError(t, err)

	defer log.OnCloserError(s, log.ERROR)

	require.Error(t, s.Start())

	resp, err := http.Get(fmt.Sprintf("http://%s/health-check", s.Addr()))
	require.NoError(t, err)

	defer log.OnCloserError(resp.Body, log.ERROR)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK", string(body))
}
