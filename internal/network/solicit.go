package network

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/mdlayher/ndp"
)

// NDPSolicitor sends an ICMPv6 Router Solicitation from the link-local address.
type NDPSolicitor struct{}

// Solicit sends one Router Solicitation to ff02::2 on ifaceName.
func (NDPSolicitor) Solicit(ifaceName string) error {
	ifi, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", ifaceName, err)
	}

	conn, _, err := ndp.Listen(ifi, ndp.LinkLocal)
	if err != nil {
		return fmt.Errorf("failed to open NDP socket on %s: %w", ifaceName, err)
	}
	defer conn.Close()

	rs := &ndp.RouterSolicitation{}
	if len(ifi.HardwareAddr) > 0 {
		rs.Options = append(rs.Options, &ndp.LinkLayerAddress{
			Direction: ndp.Source,
			Addr:      ifi.HardwareAddr,
		})
	}

	if err := conn.WriteTo(rs, nil, netip.IPv6LinkLocalAllRouters()); err != nil {
		return fmt.Errorf("failed to send router solicitation on %s: %w", ifaceName, err)
	}
	return nil
}
