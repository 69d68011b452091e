package adminsrv

import (
	"net/http"
	"strconv"

	"github.com/AdguardTeam/golibs/netutil"
	"github.com/ameshkov/nodeadmin/internal/metrics"
)

// statusWriter remembers the status code written to a response.
type statusWriter struct {
	http.ResponseWriter

	code int
}

// WriteHeader implements the http.ResponseWriter interface for *statusWriter.
func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// handle registers h for pattern with request accounting.  The pattern itself
// is used as the route label.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		s.countClient(r.RemoteAddr)

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)

		metrics.RequestsTotal.WithLabelValues(pattern, strconv.Itoa(sw.code)).Inc()
	})
}

// countClient adds the host of addr to the unique clients estimate.
func (s *Server) countClient(addr string) {
	host, _, err := netutil.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	s.clients.Insert([]byte(host))
	metrics.UniqueClients.Set(float64(s.clients.Estimate()))
}
