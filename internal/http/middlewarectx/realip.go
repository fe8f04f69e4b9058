package middlewarectx

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// ParseTrustedProxies разбирает адреса доверенных прокси: CIDR или отдельный IP.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	const op = "middlewarectx.ParseTrustedProxies"

	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out, nil
}

// RealIP подменяет RemoteAddr адресом клиента из X-Forwarded-For, но только
// если соединение пришло от доверенного прокси. Берется последний адрес
// цепочки, то есть один прокси-переход; остальное клиент мог подделать.
// Без доверенных прокси заголовки игнорируются.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip, ok := forwardedClient(r, trusted); ok {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trusted []netip.Prefix) (string, bool) {
	if len(trusted) == 0 {
		return "", false
	}
	peer, err := netip.ParseAddr(clientIP(r))
	if err != nil || !contains(trusted, peer.Unmap()) {
		return "", false
	}

	values := r.Header.Values("X-Forwarded-For")
	if len(values) == 0 {
		return "", false
	}
	hops := strings.Split(values[len(values)-1], ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(hops[len(hops)-1]))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
