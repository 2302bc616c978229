package netutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLister struct {
	addrs []net.Addr
}

func (f fakeLister) Addrs() ([]net.Addr, error) { return f.addrs, nil }

func ipNet(cidr string) *net.IPNet {
	ip, n, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	n.IP = ip
	return n
}

func TestConnectedSubnetsExcludesLoopbackAndLinkLocal(t *testing.T) {
	lister := fakeLister{addrs: []net.Addr{
		ipNet("172.20.1.3/24"),
		ipNet("127.0.0.1/8"),
		ipNet("169.254.1.1/16"),
	}}

	subnets, err := connectedSubnets(lister)
	assert.NoError(t, err)
	assert.Len(t, subnets, 1)

	found := false
	for pfx := range subnets {
		if pfx.String() == "172.20.1.0/24" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConnectedSubnetsIgnoresIPv6(t *testing.T) {
	lister := fakeLister{addrs: []net.Addr{
		ipNet("2001:db8::1/64"),
		ipNet("10.0.0.5/24"),
	}}

	subnets, err := connectedSubnets(lister)
	assert.NoError(t, err)
	assert.Len(t, subnets, 1)
}
