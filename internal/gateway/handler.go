package gateway

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/api/respond"
	"github.com/nexerp/edge-access/internal/core/domain"
)

// Handler dispatches each request to the proxy of its matching target.
// Unmatched requests are answered with 404 and never forwarded.
type Handler struct {
	table   *Table
	proxies map[string]*Proxy
	log     zerolog.Logger
}

// NewHandler builds one proxy per table target.
func NewHandler(table *Table, cfg ProxyConfig, log zerolog.Logger) (*Handler, error) {
	h := &Handler{
		table:   table,
		proxies: make(map[string]*Proxy, len(table.targets)),
		log:     log,
	}
	for _, t := range table.targets {
		p, err := NewProxy(t, cfg, log)
		if err != nil {
			return nil, err
		}
		h.proxies[t.Name] = p
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, ok := h.table.Match(r.URL.Path)
	if !ok {
		metrics.GatewayRequestsTotal.WithLabelValues("none", string(domain.OutcomeNotFound)).Inc()
		h.log.Debug().Str("path", r.URL.Path).Str("method", r.Method).Msg("no route")
		respond.FailHTTP(w, http.StatusNotFound, respond.MsgRouteNotFound)
		return
	}
	h.proxies[target.Name].ServeHTTP(w, r)
}
