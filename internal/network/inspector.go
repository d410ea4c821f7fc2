package network

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/vishvananda/netlink"
)

// LinkState is the administrative state of an interface.
type LinkState int

const (
	LinkAbsent LinkState = iota
	LinkDown
	LinkUp
)

func (s LinkState) String() string {
	switch s {
	case LinkUp:
		return "up"
	case LinkDown:
		return "down"
	default:
		return "absent"
	}
}

// Inspector reads interface state fresh from the kernel on every call.
// Nothing is cached between calls.
type Inspector struct {
	nl Netlinker
}

// NewInspector creates an inspector backed by nl.
func NewInspector(nl Netlinker) *Inspector {
	if nl == nil {
		nl = DefaultNetlinker
	}
	return &Inspector{nl: nl}
}

// LinkState reports whether name exists and is administratively up.
// A missing link is LinkAbsent with a nil error.
func (i *Inspector) LinkState(name string) (LinkState, error) {
	link, err := i.nl.LinkByName(name)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return LinkAbsent, nil
		}
		return LinkAbsent, fmt.Errorf("failed to query link %s: %w", name, err)
	}
	if link.Attrs().Flags&net.FlagUp == 0 {
		return LinkDown, nil
	}
	return LinkUp, nil
}

// ListAddresses returns every IPv6 address on the interface in kernel order.
func (i *Inspector) ListAddresses(name string) ([]Address, error) {
	link, err := i.nl.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to query link %s: %w", name, err)
	}
	addrs, err := i.nl.AddrList(link, netlink.FAMILY_V6)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses on %s: %w", name, err)
	}

	out := make([]Address, 0, len(addrs))
	for _, nlAddr := range addrs {
		if a, ok := fromIPNet(nlAddr.IPNet); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListGlobalAddresses returns the interface's global-scope IPv6 addresses
// (stable and ephemeral) in kernel order.
func (i *Inspector) ListGlobalAddresses(name string) ([]Address, error) {
	all, err := i.ListAddresses(name)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, a := range all {
		if Classify(a) != ClassNonGlobal {
			out = append(out, a)
		}
	}
	return out, nil
}

// DeleteAddress removes a from the interface.
func (i *Inspector) DeleteAddress(name string, a Address) error {
	link, err := i.nl.LinkByName(name)
	if err != nil {
		return fmt.Errorf("failed to query link %s: %w", name, err)
	}
	if err := i.nl.AddrDel(link, &netlink.Addr{IPNet: a.toIPNet()}); err != nil {
		return fmt.Errorf("failed to delete %s from %s: %w", a, name, err)
	}
	return nil
}

// AddAddress installs a on the interface with the given lifetimes.
// Zero lifetimes mean forever.
func (i *Inspector) AddAddress(name string, a Address, preferred, valid time.Duration) error {
	link, err := i.nl.LinkByName(name)
	if err != nil {
		return fmt.Errorf("failed to query link %s: %w", name, err)
	}
	nlAddr := &netlink.Addr{IPNet: a.toIPNet()}
	if valid > 0 {
		nlAddr.ValidLft = int(valid / time.Second)
		nlAddr.PreferedLft = int(preferred / time.Second)
	}
	if err := i.nl.AddrAdd(link, nlAddr); err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", a, name, err)
	}
	return nil
}
