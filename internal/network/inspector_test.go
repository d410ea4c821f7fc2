package network

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

func TestInspector_LinkState(t *testing.T) {
	nl := new(MockNetlinker)
	nl.On("LinkByName", "eth0").Return(FakeLink("eth0", true), nil)
	nl.On("LinkByName", "eth1").Return(FakeLink("eth1", false), nil)
	nl.On("LinkByName", "eth9").Return(nil, fmt.Errorf("%w: eth9", ErrLinkNotFound))
	nl.On("LinkByName", "eth5").Return(nil, errors.New("netlink socket closed"))

	insp := NewInspector(nl)

	state, err := insp.LinkState("eth0")
	require.NoError(t, err)
	assert.Equal(t, LinkUp, state)

	state, err = insp.LinkState("eth1")
	require.NoError(t, err)
	assert.Equal(t, LinkDown, state)

	state, err = insp.LinkState("eth9")
	require.NoError(t, err)
	assert.Equal(t, LinkAbsent, state)

	_, err = insp.LinkState("eth5")
	assert.Error(t, err)

	nl.AssertExpectations(t)
}

func TestInspector_ListGlobalAddresses(t *testing.T) {
	nl := new(MockNetlinker)
	link := FakeLink("eth0", true)
	nl.On("LinkByName", "eth0").Return(link, nil)
	nl.On("AddrList", link, netlink.FAMILY_V6).Return(FakeAddrs(
		"fe80::1/64",
		"2001:db8::5/64",
		"fd12::3/64",
		"2001:db8::abcd/128",
	), nil)

	addrs, err := NewInspector(nl).ListGlobalAddresses("eth0")
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "2001:db8::5/64", addrs[0].String())
	assert.Equal(t, "2001:db8::abcd/128", addrs[1].String())
}

func TestInspector_ListAddressesError(t *testing.T) {
	nl := new(MockNetlinker)
	link := FakeLink("eth0", true)
	nl.On("LinkByName", "eth0").Return(link, nil)
	nl.On("AddrList", link, netlink.FAMILY_V6).Return(nil, errors.New("EPERM"))

	_, err := NewInspector(nl).ListGlobalAddresses("eth0")
	assert.ErrorContains(t, err, "failed to list addresses on eth0")
}

func TestInspector_DeleteAddress(t *testing.T) {
	nl := new(MockNetlinker)
	link := FakeLink("eth0", true)
	nl.On("LinkByName", "eth0").Return(link, nil)
	nl.On("AddrDel", link, mock.MatchedBy(func(a *netlink.Addr) bool {
		return a.IPNet.String() == "2001:db8::5/64"
	})).Return(nil).Once()

	err := NewInspector(nl).DeleteAddress("eth0", MustParseAddress("2001:db8::5/64"))
	require.NoError(t, err)
	nl.AssertExpectations(t)
}

func TestInspector_AddAddressLifetimes(t *testing.T) {
	nl := new(MockNetlinker)
	link := FakeLink("eth0", true)
	nl.On("LinkByName", "eth0").Return(link, nil)
	nl.On("AddrAdd", link, mock.MatchedBy(func(a *netlink.Addr) bool {
		return a.IPNet.String() == "2001:db8::77/128" && a.PreferedLft == 1800 && a.ValidLft == 3600
	})).Return(nil).Once()

	err := NewInspector(nl).AddAddress("eth0", MustParseAddress("2001:db8::77/128"), 30*time.Minute, time.Hour)
	require.NoError(t, err)
	nl.AssertExpectations(t)
}

func TestLinkStateString(t *testing.T) {
	assert.Equal(t, "up", LinkUp.String())
	assert.Equal(t, "down", LinkDown.String())
	assert.Equal(t, "absent", LinkAbsent.String())
}
