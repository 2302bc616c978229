// Package netutil enumerates the local machine's connected IPv4 subnets,
// used both to populate an originated LSA's subnet set and to suppress
// reconciler operations on directly attached networks.
package netutil

import (
	"net"
	"net/netip"
)

var (
	loopback4  = netip.MustParsePrefix("127.0.0.0/8")
	linkLocal4 = netip.MustParsePrefix("169.254.0.0/16")
)

// InterfaceLister is the subset of package net this depends on, so tests
// can supply a fixed set of addresses instead of the host's real
// interfaces.
type InterfaceLister interface {
	Addrs() ([]net.Addr, error)
}

type hostInterfaces struct{}

// Addrs lists every address on every local interface.
func (hostInterfaces) Addrs() ([]net.Addr, error) {
	return net.InterfaceAddrs()
}

// ConnectedSubnets enumerates the local IPv4 interfaces and returns the
// set of CIDR networks derived from their (address, netmask) pairs,
// excluding loopback and link-local.
func ConnectedSubnets() (map[netip.Prefix]struct{}, error) {
	return connectedSubnets(hostInterfaces{})
}

func connectedSubnets(lister InterfaceLister) (map[netip.Prefix]struct{}, error) {
	addrs, err := lister.Addrs()
	if err != nil {
		return nil, err
	}

	subnets := make(map[netip.Prefix]struct{})
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}

		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}

		ones, _ := ipNet.Mask.Size()
		addr, ok := netip.AddrFromSlice(ip4)
		if !ok {
			continue
		}

		pfx := netip.PrefixFrom(addr, ones).Masked()
		if excluded(pfx) {
			continue
		}

		subnets[pfx] = struct{}{}
	}

	return subnets, nil
}

func excluded(pfx netip.Prefix) bool {
	return loopback4.Overlaps(pfx) || linkLocal4.Overlaps(pfx)
}

// IsLinkLocal reports whether pfx falls in the IPv4 link-local range
// (169.254.0.0/16). Exported so the kernel route reconciler can apply
// the same exclusion §4.7 requires of the kernel snapshot, without
// duplicating the prefix literal.
func IsLinkLocal(pfx netip.Prefix) bool {
	return linkLocal4.Overlaps(pfx)
}
