package network

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vishvananda/netlink"
)

// DryRunNetlinker reads through to an underlying Netlinker but only records
// address mutations. Reads stay real so the monitor still sees true state.
type DryRunNetlinker struct {
	Inner Netlinker

	mu  sync.Mutex
	Ops []string
}

// NewDryRunNetlinker wraps inner.
func NewDryRunNetlinker(inner Netlinker) *DryRunNetlinker {
	return &DryRunNetlinker{Inner: inner}
}

func (n *DryRunNetlinker) log(op string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Ops = append(n.Ops, fmt.Sprintf("ip %s", op))
}

// Operations returns the recorded mutations.
func (n *DryRunNetlinker) Operations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Ops...)
}

func (n *DryRunNetlinker) LinkByName(name string) (netlink.Link, error) {
	return n.Inner.LinkByName(name)
}

func (n *DryRunNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return n.Inner.AddrList(link, family)
}

func (n *DryRunNetlinker) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	n.log(fmt.Sprintf("-6 addr add %s dev %s", addr.IPNet.String(), link.Attrs().Name))
	return nil
}

func (n *DryRunNetlinker) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	n.log(fmt.Sprintf("-6 addr del %s dev %s", addr.IPNet.String(), link.Attrs().Name))
	return nil
}

// DryRunExecutor implements CommandExecutor but only records commands.
type DryRunExecutor struct {
	mu       sync.Mutex
	Commands []string
}

// NewDryRunExecutor creates a new dry run executor.
func NewDryRunExecutor() *DryRunExecutor {
	return &DryRunExecutor{
		Commands: make([]string, 0),
	}
}

// RunCommand records the command instead of executing it.
func (e *DryRunExecutor) RunCommand(ctx context.Context, name string, arg ...string) (string, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, strings.TrimSpace(name+" "+strings.Join(arg, " ")))
	return "", 0, nil
}
