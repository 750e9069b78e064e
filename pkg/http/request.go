package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPConfig lists the proxies whose forwarding headers are believed.
type IPConfig struct {
	TrustedProxies []string // IPs or CIDR ranges
	nets           []*net.IPNet
}

// ParseTrustedProxy accepts a CIDR range or a bare IP, which is widened to a
// single-host network.
func ParseTrustedProxy(entry string) (*net.IPNet, error) {
	entry = strings.TrimSpace(entry)
	if _, ipNet, err := net.ParseCIDR(entry); err == nil {
		return ipNet, nil
	}
	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy %q: want an IP or CIDR", entry)
	}
	if v4 := ip.To4(); v4 != nil {
		return &net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}

// NewIPConfig parses the trusted proxies once. Config loading rejects invalid
// entries, so any that reach here are skipped.
func NewIPConfig(trustedProxies []string) *IPConfig {
	cfg := &IPConfig{TrustedProxies: trustedProxies}
	for _, entry := range trustedProxies {
		if ipNet, err := ParseTrustedProxy(entry); err == nil {
			cfg.nets = append(cfg.nets, ipNet)
		}
	}
	return cfg
}

// ExtractClientIP returns the caller's address. Forwarding headers are
// honoured only when the direct peer is a trusted proxy. X-Forwarded-For is
// read right to left and the first untrusted hop wins, so entries a client
// prepends cannot pick its rate limit bucket or history IP.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddrIP(r)

	if config == nil || !config.trusts(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(hops[i])
			if net.ParseIP(ip) == nil {
				break
			}
			if !config.trusts(ip) {
				return ip
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	return remoteIP
}

func remoteAddrIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (c *IPConfig) trusts(ip string) bool {
	nets := c.nets
	if nets == nil && len(c.TrustedProxies) > 0 {
		nets = NewIPConfig(c.TrustedProxies).nets
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}
