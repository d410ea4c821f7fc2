// Package network reads and mutates IPv6 interface state via netlink.
//
// # Key Components
//
//   - [Netlinker]: narrow abstraction over github.com/vishvananda/netlink so the
//     inspector can be driven by [MockNetlinker] in tests
//   - [Inspector]: link state, global address listing and per-address deletion
//   - [Classify] / [IsValidForProbe]: pure address classification
//   - [DryRunNetlinker]: reads from the real system, records mutations instead
//     of applying them
//   - [NDPSolicitor]: sends a Router Solicitation so SLAAC re-derives prefixes
//
// # Classification
//
// A global address is one whose leading hextet falls in 2000::/3. Global
// addresses with a /128 prefix are ephemeral (host routes or temporary leases);
// any other prefix length is stable. Everything else is non-global and ignored.
package network
