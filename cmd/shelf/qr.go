package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/jackpal/gateway"
	"github.com/mdp/qrterminal/v3"
)

// printQR writes the server URL as a terminal QR code. When listening on
// all interfaces the address on the default route's subnet is used.
func printQR(w io.Writer, host, port string) {
	if host == "" || host == "0.0.0.0" || host == "::" {
		ip, err := lanIP()
		if err != nil {
			slog.Warn("cannot determine LAN address for QR code", "err", err)
			return
		}
		host = ip.String()
	}

	url := "http://" + net.JoinHostPort(host, port) + "/"

	_, _ = fmt.Fprintf(w, "\nScan to open %s\n", url)
	qrterminal.GenerateWithConfig(url, qrterminal.Config{
		Level:          qrterminal.M,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
}

// lanIP returns the local IPv4 address on the same subnet as the default
// gateway.
func lanIP() (net.IP, error) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		return nil, fmt.Errorf("discover gateway: %w", err)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			slog.Debug("skipping interface", "name", iface.Name, "err", err)
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}

			ip := ipnet.IP.To4()
			if ip == nil || ip.IsLoopback() || !ip.IsGlobalUnicast() {
				continue
			}

			if ipnet.Contains(gw) {
				return ip, nil
			}
		}
	}

	return nil, fmt.Errorf("no IPv4 address on the gateway %s subnet", gw)
}
