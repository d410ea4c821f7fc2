package network

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"
	"github.com/vishvananda/netlink"
)

// MockNetlinker is a mock implementation of the Netlinker interface.
type MockNetlinker struct {
	mock.Mock
}

func (m *MockNetlinker) LinkByName(name string) (netlink.Link, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(netlink.Link), args.Error(1)
}
func (m *MockNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	args := m.Called(link, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]netlink.Addr), args.Error(1)
}
func (m *MockNetlinker) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	args := m.Called(link, addr)
	return args.Error(0)
}
func (m *MockNetlinker) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	args := m.Called(link, addr)
	return args.Error(0)
}

// MockCommandExecutor is a mock implementation of the CommandExecutor interface.
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) RunCommand(ctx context.Context, name string, arg ...string) (string, int, error) {
	argsSlice := []interface{}{name}
	for _, a := range arg {
		argsSlice = append(argsSlice, a)
	}

	args := m.Called(argsSlice...)
	return args.String(0), args.Int(1), args.Error(2)
}

// MockSolicitor is a mock implementation of the Solicitor interface.
type MockSolicitor struct {
	mock.Mock
}

func (m *MockSolicitor) Solicit(ifaceName string) error {
	args := m.Called(ifaceName)
	return args.Error(0)
}

// FakeLink builds a netlink device with the given name and up flag.
func FakeLink(name string, up bool) netlink.Link {
	attrs := netlink.NewLinkAttrs()
	attrs.Name = name
	if up {
		attrs.Flags = net.FlagUp
	}
	return &netlink.Device{LinkAttrs: attrs}
}

// FakeAddrs converts CIDR literals into netlink addresses for mocks.
func FakeAddrs(cidrs ...string) []netlink.Addr {
	out := make([]netlink.Addr, 0, len(cidrs))
	for _, c := range cidrs {
		a := MustParseAddress(c)
		out = append(out, netlink.Addr{IPNet: a.toIPNet()})
	}
	return out
}
