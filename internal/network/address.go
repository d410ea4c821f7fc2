package network

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// AddressClass is the classification of an interface address.
type AddressClass int

const (
	// ClassNonGlobal covers link-local, multicast, ULA, loopback and IPv4.
	ClassNonGlobal AddressClass = iota
	// ClassStable is a global address with a subnet prefix (not /128).
	ClassStable
	// ClassEphemeral is a global /128 address: a host route or temporary lease.
	ClassEphemeral
)

func (c AddressClass) String() string {
	switch c {
	case ClassStable:
		return "stable"
	case ClassEphemeral:
		return "ephemeral"
	default:
		return "non-global"
	}
}

// Address is an IPv6 address and prefix length bound to an interface.
type Address struct {
	IP        netip.Addr
	PrefixLen int
}

// String renders the address in CIDR form, e.g. "2001:db8::5/64".
func (a Address) String() string {
	return fmt.Sprintf("%s/%d", a.IP, a.PrefixLen)
}

// ParseAddress parses "addr/len". A bare address is treated as /128.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	addrPart, lenPart, hasLen := strings.Cut(s, "/")

	ip, err := netip.ParseAddr(addrPart)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if !ip.Is6() || ip.Is4In6() {
		return Address{}, fmt.Errorf("not an IPv6 address: %q", s)
	}

	prefixLen := 128
	if hasLen {
		prefixLen, err = strconv.Atoi(lenPart)
		if err != nil || prefixLen < 0 || prefixLen > 128 {
			return Address{}, fmt.Errorf("invalid prefix length in %q", s)
		}
	}
	return Address{IP: ip.WithZone(""), PrefixLen: prefixLen}, nil
}

// MustParseAddress is ParseAddress for literals known to be valid.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// isGlobalUnicast reports whether the leading hextet falls in 2000::/3,
// i.e. its high nibble is 2 or 3. Reserved ranges inside 2000::/3 still
// count as global.
func isGlobalUnicast(ip netip.Addr) bool {
	if !ip.Is6() || ip.Is4In6() {
		return false
	}
	return ip.As16()[0]&0xe0 == 0x20
}

// Classify returns the class of a. It is a pure function of the address and
// prefix length.
func Classify(a Address) AddressClass {
	if !isGlobalUnicast(a.IP) {
		return ClassNonGlobal
	}
	if a.PrefixLen == 128 {
		return ClassEphemeral
	}
	return ClassStable
}

// IsValidForProbe reports whether a may source probes and be renewed.
// Ephemeral addresses qualify only when treat128AsDeletable is set.
func IsValidForProbe(a Address, treat128AsDeletable bool) bool {
	switch Classify(a) {
	case ClassStable:
		return true
	case ClassEphemeral:
		return treat128AsDeletable
	default:
		return false
	}
}

// FirstValid returns the first address in addrs that IsValidForProbe.
func FirstValid(addrs []Address, treat128AsDeletable bool) (Address, bool) {
	for _, a := range addrs {
		if IsValidForProbe(a, treat128AsDeletable) {
			return a, true
		}
	}
	return Address{}, false
}

// fromIPNet converts a netlink address into an Address. ok is false for IPv4.
func fromIPNet(n *net.IPNet) (Address, bool) {
	if n == nil || n.IP.To4() != nil {
		return Address{}, false
	}
	ip, ok := netip.AddrFromSlice(n.IP.To16())
	if !ok {
		return Address{}, false
	}
	ones, bits := n.Mask.Size()
	if bits != 128 {
		return Address{}, false
	}
	return Address{IP: ip, PrefixLen: ones}, true
}

// toIPNet is the inverse of fromIPNet.
func (a Address) toIPNet() *net.IPNet {
	return &net.IPNet{
		IP:   net.IP(a.IP.AsSlice()),
		Mask: net.CIDRMask(a.PrefixLen, 128),
	}
}
