package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// RegisterPprof mounts the pprof handlers under /debug/pprof, gated by a
// CIDR allowlist so profiling stays reachable only from trusted networks.
func RegisterPprof(r chi.Router, allowedCIDRs []string, logger *slog.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(IPAllowlist(allowedCIDRs, logger))
		r.HandleFunc("/debug/pprof/*", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	})
}

type cidrAllowlist []*net.IPNet

func (a cidrAllowlist) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range a {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func parseAllowlist(cidrs []string, logger *slog.Logger) cidrAllowlist {
	var list cidrAllowlist
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("skipping unparsable allowlist CIDR",
				slog.String("cidr", cidr),
				slog.String("error", err.Error()),
			)
			continue
		}
		list = append(list, ipNet)
	}
	return list
}

// IPAllowlist returns middleware admitting only requests whose remote IP
// falls inside one of the given CIDR ranges.
func IPAllowlist(cidrs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	allowlist := parseAllowlist(cidrs, logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !allowlist.contains(net.ParseIP(host)) {
				logger.Warn("request rejected by IP allowlist",
					slog.String("ip", host),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "FORBIDDEN",
						"message": "access restricted by IP allowlist",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
