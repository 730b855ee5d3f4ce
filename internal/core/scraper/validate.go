package scraper

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"

	"recipe-manager/internal/pkg/common"
)

// reservedPrefixes 保留與特殊用途位址，net.IP 的 Is* 方法未涵蓋
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// isBlockedIP 私有、本機、保留位址一律拒絕；IPv4-mapped IPv6 以 IPv4 判斷
func isBlockedIP(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	if ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return true
	}

	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ValidateURL 只允許指向公開主機的 http/https URL
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return common.Wrap(common.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return common.Wrap(common.ErrInvalidURL, fmt.Errorf("only HTTP and HTTPS URLs are allowed"))
	}

	host := u.Hostname()
	if host == "" {
		return common.Wrap(common.ErrInvalidURL, fmt.Errorf("no hostname"))
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return common.Wrap(common.ErrInvalidURL, fmt.Errorf("requests to private/local IP addresses are not allowed"))
		}
		return nil
	}

	switch strings.ToLower(host) {
	case "localhost", "localhost.localdomain":
		return common.Wrap(common.ErrInvalidURL, fmt.Errorf("requests to localhost are not allowed"))
	}
	if strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return common.Wrap(common.ErrInvalidURL, fmt.Errorf("requests to localhost are not allowed"))
	}

	return nil
}
