package util

import (
	"encoding/binary"
	"fmt"
	"net"
)

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidIPv4CIDR checks if a string is a valid IPv4 CIDR notation
func IsValidIPv4CIDR(cidr string) bool {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return ip.To4() != nil
}

// CommonSubnet returns the smallest IPv4 subnet that contains every
// address in ips, in CIDR notation. The prefix length is the number of
// leading bits shared by the lowest and highest address. Returns an
// error when ips is empty or contains a non-IPv4 address.
func CommonSubnet(ips []net.IP) (string, error) {
	if len(ips) == 0 {
		return "", fmt.Errorf("no addresses given")
	}

	var minAddr, maxAddr uint32
	for i, ip := range ips {
		v4 := ip.To4()
		if v4 == nil {
			return "", fmt.Errorf("not an IPv4 address: %s", ip)
		}
		n := binary.BigEndian.Uint32(v4)
		if i == 0 || n < minAddr {
			minAddr = n
		}
		if i == 0 || n > maxAddr {
			maxAddr = n
		}
	}

	prefix := 32
	for diff := minAddr ^ maxAddr; diff != 0; diff >>= 1 {
		prefix--
	}

	mask := net.CIDRMask(prefix, 32)
	network := make(net.IP, 4)
	binary.BigEndian.PutUint32(network, minAddr)
	return fmt.Sprintf("%s/%d", network.Mask(mask), prefix), nil
}
