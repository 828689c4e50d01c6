// Package netutil provides small network helpers for presenting the hub's
// LAN address to devices that want to join by URL or QR code.
package netutil

import (
	"fmt"
	"net"
)

// LocalIP returns the IPv4 address peers on the local network should use to
// reach this host. Private addresses win over other non-loopback ones; with
// no candidate at all the loopback address is returned so single-machine
// setups still get a usable URL.
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}

	var fallback string
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}

		ip4 := ip.To4()
		if ip4 == nil || ip4.IsLoopback() {
			continue
		}
		if ip4.IsPrivate() {
			return ip4.String()
		}
		if fallback == "" {
			fallback = ip4.String()
		}
	}

	if fallback != "" {
		return fallback
	}
	return "127.0.0.1"
}

// BaseURL builds the http URL devices use to reach the hub on the LAN.
func BaseURL(port int) string {
	return fmt.Sprintf("http://%s:%d", LocalIP(), port)
}
