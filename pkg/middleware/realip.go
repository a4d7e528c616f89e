package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go.uber.org/zap"
)

// RealIP rewrites r.RemoteAddr to the client address reported by a trusted
// reverse proxy. Forwarding headers from any other peer are ignored, so
// RemoteAddr stays the TCP peer. Entries are IPs or CIDRs.
func RealIP(trustedProxies []string, logger *zap.Logger) func(http.Handler) http.Handler {
	trusted := parseTrusted(trustedProxies, logger)

	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer, ok := remoteAddr(r); ok && trusted.contains(peer) {
				if ip := forwardedClient(r, trusted); ip != "" {
					r.RemoteAddr = ip
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type prefixes []netip.Prefix

func (p prefixes) contains(addr netip.Addr) bool {
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseTrusted(entries []string, logger *zap.Logger) prefixes {
	var out prefixes
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				logger.Warn("Ignoring invalid trusted proxy", zap.String("entry", entry), zap.Error(err))
				continue
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.Warn("Ignoring invalid trusted proxy", zap.String("entry", entry), zap.Error(err))
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

// forwardedClient walks X-Forwarded-For from the right and returns the first
// hop that is not a trusted proxy. A malformed hop yields "". X-Real-IP is
// the fallback when no X-Forwarded-For is present.
func forwardedClient(r *http.Request, trusted prefixes) string {
	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		var addr netip.Addr
		for i := len(hops) - 1; i >= 0; i-- {
			var err error
			if addr, err = netip.ParseAddr(strings.TrimSpace(hops[i])); err != nil {
				return ""
			}
			addr = addr.Unmap()
			if !trusted.contains(addr) {
				break
			}
		}
		return addr.String()
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return ""
}

func remoteAddr(r *http.Request) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(clientIP(r))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// clientIP is the host part of r.RemoteAddr. Behind RealIP that is the
// forwarded client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
