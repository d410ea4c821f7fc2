package network

import (
	"context"
	"errors"

	"github.com/vishvananda/netlink"
)

// ErrLinkNotFound is returned by a Netlinker when the named link does not exist.
var ErrLinkNotFound = errors.New("link not found")

// Netlinker is an interface that abstracts netlink interactions.
type Netlinker interface {
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error
}

// CommandExecutor is an interface that abstracts executing external commands.
type CommandExecutor interface {
	// RunCommand runs name with args and returns its combined output and exit
	// code. err is non-nil whenever the command did not exit 0; exitCode is -1
	// when the command could not be started or was killed.
	RunCommand(ctx context.Context, name string, arg ...string) (output string, exitCode int, err error)
}

// Solicitor asks on-link routers to re-advertise.
type Solicitor interface {
	Solicit(ifaceName string) error
}
