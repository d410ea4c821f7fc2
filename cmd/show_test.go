package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"

	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/network"
)

func TestShowInterfaces(t *testing.T) {
	nl := new(network.MockNetlinker)
	eth0 := network.FakeLink("eth0", true)
	nl.On("LinkByName", "eth0").Return(eth0, nil)
	nl.On("LinkByName", "eth9").Return(nil, network.ErrLinkNotFound)
	nl.On("AddrList", eth0, netlink.FAMILY_V6).Return(network.FakeAddrs(
		"fe80::1/64",
		"2001:db8::5/64",
		"2001:db8::9/128",
	), nil)

	cfg := config.Default()
	cfg.Interfaces = []string{"eth0", "eth9"}

	var out bytes.Buffer
	require.NoError(t, showInterfaces(&out, cfg, network.NewInspector(nl)))

	text := out.String()
	assert.Contains(t, text, "eth0: up")
	assert.Contains(t, text, "eth9: absent")
	assert.Regexp(t, `2001:db8::5/64\s+stable, probe source`, text)
	assert.Regexp(t, `2001:db8::9/128\s+ephemeral\n`, text)
	assert.Regexp(t, `fe80::1/64\s+non-global`, text)
}
