package singleinstance

import (
	"net"
	"os"
	"strconv"
)

const (
	defaultPortStart = 49620
	defaultPortEnd   = 49640

	envPortStart = "FIXTEXT_PORT_START"
	envPortEnd   = "FIXTEXT_PORT_END"
)

// PortRange is the inclusive loopback port range a resident may own. The
// resident binds Start; clients scan the whole range.
type PortRange struct {
	Start, End int
}

// Ports reads FIXTEXT_PORT_START and FIXTEXT_PORT_END, falling back to the
// defaults for unset or invalid values and clamping to unprivileged ports.
func Ports() PortRange {
	r := PortRange{
		Start: envInt(envPortStart, defaultPortStart),
		End:   envInt(envPortEnd, defaultPortEnd),
	}
	r.Start = max(r.Start, 1024)
	r.End = min(r.End, 65535)
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// Addrs lists the loopback addresses of the range in scan order.
func (r PortRange) Addrs() []string {
	addrs := make([]string, 0, r.End-r.Start+1)
	for port := r.Start; port <= r.End; port++ {
		addrs = append(addrs, net.JoinHostPort(residentHost, strconv.Itoa(port)))
	}
	return addrs
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
