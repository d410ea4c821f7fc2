package acquire

import (
	"context"
	"fmt"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv6"
	"github.com/insomniacslk/dhcp/dhcpv6/nclient6"

	"grimm.is/v6watch/internal/brand"
	"grimm.is/v6watch/internal/logging"
	"grimm.is/v6watch/internal/network"
)

// AddressInstaller installs an address with lifetimes on an interface.
type AddressInstaller interface {
	AddAddress(name string, a network.Address, preferred, valid time.Duration) error
}

// Lease is one IA_NA address offered by a DHCPv6 server.
type Lease struct {
	Address   network.Address
	Preferred time.Duration
	Valid     time.Duration
}

// exchangeFunc performs Solicit/Advertise/Request/Reply and returns the Reply.
type exchangeFunc func(ctx context.Context, iface string) (*dhcpv6.Message, error)

// NativeAcquirer runs the DHCPv6 exchange in-process and installs the leased
// addresses with netlink. No lease state is kept; renewal is the next run's job.
type NativeAcquirer struct {
	installer AddressInstaller
	exchange  exchangeFunc
	logger    *logging.Logger
}

// NewNativeAcquirer returns an acquirer using nclient6.
func NewNativeAcquirer(installer AddressInstaller, logger *logging.Logger) *NativeAcquirer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &NativeAcquirer{
		installer: installer,
		exchange:  nclientExchange,
		logger:    logger.WithComponent("dhcpv6"),
	}
}

func nclientExchange(ctx context.Context, iface string) (*dhcpv6.Message, error) {
	client, err := nclient6.New(iface)
	if err != nil {
		return nil, fmt.Errorf("failed to create DHCPv6 client: %w", err)
	}
	defer client.Close()

	userClass := dhcpv6.WithUserClass([]byte(brand.UserAgent(brand.Version)))
	adv, err := client.Solicit(ctx, userClass)
	if err != nil {
		return nil, fmt.Errorf("solicit: %w", err)
	}
	reply, err := client.Request(ctx, adv, userClass)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return reply, nil
}

// Acquire implements Acquirer.
func (a *NativeAcquirer) Acquire(ctx context.Context, iface string) error {
	reply, err := a.exchange(ctx, iface)
	if err != nil {
		return classify(ctx, iface, err)
	}

	leases := LeasedAddresses(reply)
	if len(leases) == 0 {
		return fmt.Errorf("%w on %s: reply carried no IA_NA addresses", ErrAcquireFailed, iface)
	}

	installed := 0
	for _, l := range leases {
		if err := a.installer.AddAddress(iface, l.Address, l.Preferred, l.Valid); err != nil {
			a.logger.Error("Failed to install leased address", "iface", iface, "addr", l.Address, "error", err)
			continue
		}
		a.logger.Info("Installed leased address", "iface", iface, "addr", l.Address, "valid", l.Valid)
		installed++
	}
	if installed == 0 {
		return fmt.Errorf("%w on %s: could not install any leased address", ErrAcquireFailed, iface)
	}
	return nil
}

// LeasedAddresses extracts every IA_NA address from a DHCPv6 Reply as /128s.
func LeasedAddresses(reply *dhcpv6.Message) []Lease {
	if reply == nil {
		return nil
	}
	var out []Lease
	for _, iana := range reply.Options.IANA() {
		for _, ia := range iana.Options.Addresses() {
			addr, err := network.ParseAddress(ia.IPv6Addr.String())
			if err != nil {
				continue
			}
			out = append(out, Lease{
				Address:   addr,
				Preferred: ia.PreferredLifetime,
				Valid:     ia.ValidLifetime,
			})
		}
	}
	return out
}
