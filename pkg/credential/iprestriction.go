package credential

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// AddressInSubnet reports whether addr matches one of the comma-separated
// entries in restriction. Entries may be an exact address ("10.1.2.3"), a CIDR
// prefix ("10.1.0.0/16"), an IPv4 last-octet range ("10.1.2.1-20") or a dotted
// prefix ("10.1." or "10.1"). An unparsable addr matches nothing.
func AddressInSubnet(addr, restriction string) bool {
	ip, ok := parseRemoteAddr(addr)
	if !ok {
		return false
	}

	for _, raw := range strings.Split(restriction, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if matchEntry(ip, entry) {
			return true
		}
	}
	return false
}

func parseRemoteAddr(addr string) (netip.Addr, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return netip.Addr{}, false
	}
	if ip, err := netip.ParseAddr(addr); err == nil {
		return ip.Unmap(), true
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return netip.Addr{}, false
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

func matchEntry(ip netip.Addr, entry string) bool {
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return false
		}
		return prefix.Masked().Contains(ip)
	}

	if strings.Contains(entry, "-") {
		return matchRange(ip, entry)
	}

	if exact, err := netip.ParseAddr(entry); err == nil {
		return exact.Unmap() == ip
	}

	if !ip.Is4() {
		return false
	}
	prefix := strings.TrimSuffix(entry, ".") + "."
	return strings.HasPrefix(ip.String(), prefix)
}

func matchRange(ip netip.Addr, entry string) bool {
	startRaw, endRaw, _ := strings.Cut(entry, "-")
	start, err := netip.ParseAddr(strings.TrimSpace(startRaw))
	if err != nil || !start.Is4() || !ip.Is4() {
		return false
	}
	end, err := strconv.Atoi(strings.TrimSpace(endRaw))
	if err != nil || end < 0 || end > 255 {
		return false
	}

	s := start.As4()
	a := ip.As4()
	if s[0] != a[0] || s[1] != a[1] || s[2] != a[2] {
		return false
	}
	return int(a[3]) >= int(s[3]) && int(a[3]) <= end
}
