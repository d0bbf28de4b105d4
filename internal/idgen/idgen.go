// Package idgen produces globally unique, time-ordered-enough post ids:
// a machine hash, a millisecond timestamp and a per-millisecond counter,
// hex-packed into an opaque string. Ordering of listings never relies on
// these ids beyond tie-breaking.
package idgen

import (
	"bytes"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const customEpoch int64 = 1514764800000 // 2018-01-01 UTC, in ms

// Generator hands out unique post ids.
type Generator interface {
	NewID() string
}

type generator struct {
	mu        sync.Mutex
	machineID string
	lastMs    int64
	counter   int64
}

// New builds a Generator seeded from the host MAC address and pid.
func New() Generator {
	return &generator{machineID: machineID()}
}

func (g *generator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := time.Now().UnixMilli() - customEpoch
	if ms <= g.lastMs {
		g.counter++
		if g.counter > 0xfff {
			// counter exhausted for this millisecond, wait out the tick
			for ms <= g.lastMs {
				time.Sleep(100 * time.Microsecond)
				ms = time.Now().UnixMilli() - customEpoch
			}
			g.lastMs = ms
			g.counter = 0
		}
	} else {
		g.lastMs = ms
		g.counter = 0
	}

	return g.machineID + fixedHex(g.lastMs, 10) + fixedHex(g.counter, 3)
}

func fixedHex(v int64, width int) string {
	s := strconv.FormatInt(v, 16)
	if len(s) > width {
		return s[len(s)-width:]
	}
	return strings.Repeat("0", width-len(s)) + s
}

func machineID() string {
	interfaces, err := net.Interfaces()
	if err == nil {
		for _, i := range interfaces {
			if i.Flags&net.FlagUp == 0 || bytes.Equal(i.HardwareAddr, nil) {
				continue
			}
			// skip locally administered addresses
			if i.HardwareAddr[0]&2 == 2 {
				continue
			}
			return hashMacPid(i.HardwareAddr.String())
		}
	}
	return hashMacPid("00:00:00:00:00:00")
}

func hashMacPid(mac string) string {
	var hash uint16
	macPid := mac + strconv.Itoa(os.Getpid())
	for i := 0; i < len(macPid); i++ {
		hash += uint16(macPid[i]) << (uint(i&1) * 8)
	}

	s := strconv.FormatUint(uint64(hash), 10)
	if len(s) > 3 {
		return s[:3]
	}
	return strings.Repeat("0", 3-len(s)) + s
}
