package acquire

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grimm.is/v6watch/internal/config"
	"grimm.is/v6watch/internal/network"
)

func TestDhclientAcquirer_Args(t *testing.T) {
	exec := new(network.MockCommandExecutor)
	exec.On("RunCommand", "dhclient", "-6", "-1", "-v", "eth0").Return("bound", 0, nil)

	a := NewDhclientAcquirer(exec)
	require.NoError(t, a.Acquire(context.Background(), "eth0"))
	exec.AssertExpectations(t)
}

func TestDhclientAcquirer_Failure(t *testing.T) {
	exec := new(network.MockCommandExecutor)
	exec.On("RunCommand", "dhclient", "-6", "-1", "-v", "eth0").
		Return("XMT: Solicit\nNo DHCPv6 offers", 2, errors.New("exit status 2"))

	err := NewDhclientAcquirer(exec).Acquire(context.Background(), "eth0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAcquireFailed)
	assert.Contains(t, err.Error(), "No DHCPv6 offers")
}

func TestDhclientAcquirer_Timeout(t *testing.T) {
	exec := new(network.MockCommandExecutor)
	exec.On("RunCommand", "dhclient", "-6", "-1", "-v", "eth0").
		Return("", -1, context.DeadlineExceeded)

	err := NewDhclientAcquirer(exec).Acquire(context.Background(), "eth0")
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestDhclientAcquirer_Cancelled(t *testing.T) {
	exec := new(network.MockCommandExecutor)
	exec.On("RunCommand", "dhclient", "-6", "-1", "-v", "eth0").
		Return("", -1, context.Canceled)

	err := NewDhclientAcquirer(exec).Acquire(context.Background(), "eth0")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAcquireFailed)
}

type mockInstaller struct {
	mock.Mock
}

func (m *mockInstaller) AddAddress(name string, a network.Address, preferred, valid time.Duration) error {
	return m.Called(name, a, preferred, valid).Error(0)
}

func replyWith(t *testing.T, addrs ...string) *dhcpv6.Message {
	t.Helper()
	msg, err := dhcpv6.NewMessage()
	require.NoError(t, err)
	msg.MessageType = dhcpv6.MessageTypeReply

	var opts dhcpv6.Options
	for _, a := range addrs {
		opts = append(opts, &dhcpv6.OptIAAddress{
			IPv6Addr:          net.ParseIP(a),
			PreferredLifetime: time.Hour,
			ValidLifetime:     2 * time.Hour,
		})
	}
	msg.AddOption(&dhcpv6.OptIANA{
		IaId:    [4]byte{0, 0, 0, 1},
		Options: dhcpv6.IdentityOptions{Options: opts},
	})
	return msg
}

func TestLeasedAddresses(t *testing.T) {
	leases := LeasedAddresses(replyWith(t, "2001:db8::10", "2001:db8::11"))
	require.Len(t, leases, 2)
	assert.Equal(t, "2001:db8::10/128", leases[0].Address.String())
	assert.Equal(t, network.ClassEphemeral, network.Classify(leases[0].Address))
	assert.Equal(t, time.Hour, leases[0].Preferred)
	assert.Equal(t, 2*time.Hour, leases[1].Valid)

	assert.Empty(t, LeasedAddresses(nil))
}

func TestNativeAcquirer_InstallsLeases(t *testing.T) {
	inst := new(mockInstaller)
	inst.On("AddAddress", "eth0", network.MustParseAddress("2001:db8::10/128"), time.Hour, 2*time.Hour).Return(nil)

	a := NewNativeAcquirer(inst, nil)
	a.exchange = func(ctx context.Context, iface string) (*dhcpv6.Message, error) {
		return replyWith(t, "2001:db8::10"), nil
	}

	require.NoError(t, a.Acquire(context.Background(), "eth0"))
	inst.AssertExpectations(t)
}

func TestNativeAcquirer_EmptyReply(t *testing.T) {
	a := NewNativeAcquirer(new(mockInstaller), nil)
	a.exchange = func(ctx context.Context, iface string) (*dhcpv6.Message, error) {
		return replyWith(t), nil
	}
	assert.ErrorIs(t, a.Acquire(context.Background(), "eth0"), ErrAcquireFailed)
}

func TestNativeAcquirer_InstallFailure(t *testing.T) {
	inst := new(mockInstaller)
	inst.On("AddAddress", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("EPERM"))

	a := NewNativeAcquirer(inst, nil)
	a.exchange = func(ctx context.Context, iface string) (*dhcpv6.Message, error) {
		return replyWith(t, "2001:db8::10"), nil
	}
	assert.ErrorIs(t, a.Acquire(context.Background(), "eth0"), ErrAcquireFailed)
}

func TestNativeAcquirer_ExchangeTimeout(t *testing.T) {
	a := NewNativeAcquirer(new(mockInstaller), nil)
	a.exchange = func(ctx context.Context, iface string) (*dhcpv6.Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Acquire(ctx, "eth0"), ErrAcquireTimeout)
}

func TestNewAcquirer(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &DhclientAcquirer{}, NewAcquirer(cfg, nil, nil, nil))

	cfg.AcquireMethod = config.AcquireNative
	assert.IsType(t, &NativeAcquirer{}, NewAcquirer(cfg, nil, new(mockInstaller), nil))
}
