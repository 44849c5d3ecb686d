package monitor

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sys/unix"

	"github.com/nabbar/svc-fabric/internal/logger"
)

const (
	sampleInterval = time.Second
	usageWindow    = 6

	wlanBandwidthKbps = 30000
	ethtoolMultiplier = 100

	fallbackCores = 1
	fallbackGHz   = 1.0
)

// memSample mirrors /proc/self/status's four memory counters. Sampled for
// local observation only; never sent on the wire.
type memSample struct {
	VmRSS, VmHWM, VmSize, VmPeak uint64
}

// Sampler runs the background OS metrics collector: a 1s-tick goroutine
// samples CPU usage (windowed mean of the last 6 jiffies deltas), interface
// bandwidth, and process memory; cores and frequency are captured once at
// startup.
type Sampler struct {
	log *logger.Entry

	cores     int
	frequency float64

	mu      sync.RWMutex
	usage   []float64
	last    cpu.TimesStat
	haveLast bool
	mem     memSample
	bw      float64
}

// NewSampler captures cores/frequency once, falling back to cores=1 and
// freq=1.0 GHz when the underlying counters are unavailable, and returns a
// Sampler ready to Run.
func NewSampler(log *logger.Entry) *Sampler {
	s := &Sampler{log: log, cores: fallbackCores, frequency: fallbackGHz}

	if n, e := cpu.Counts(true); e == nil && n > 0 {
		s.cores = n
	} else if log != nil {
		log.Warn("monitor: cpu core count unavailable, defaulting to 1")
	}

	if infos, e := cpu.Info(); e == nil && len(infos) > 0 && infos[0].Mhz > 0 {
		s.frequency = infos[0].Mhz / 1000.0
	} else if log != nil {
		log.Warn("monitor: cpu frequency unavailable, defaulting to 1.0 GHz")
	}

	return s
}

// Run samples every second until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	t := time.NewTicker(sampleInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sampleOnce()
		}
	}
}

func (s *Sampler) sampleOnce() {
	s.sampleCPU()
	s.sampleBandwidth()
	s.sampleMemory()
	s.Observe()
}

func (s *Sampler) sampleCPU() {
	times, e := cpu.Times(false)
	if e != nil || len(times) == 0 {
		if s.log != nil {
			s.log.Warn("monitor: cpu.Times sample failed: " + errString(e))
		}
		return
	}

	cur := times[0]

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.haveLast {
		s.last = cur
		s.haveLast = true
		return
	}

	dUser := cur.User - s.last.User
	dNice := cur.Nice - s.last.Nice
	dSystem := cur.System - s.last.System
	dIdle := cur.Idle - s.last.Idle
	s.last = cur

	if dUser < 0 || dNice < 0 || dSystem < 0 || dIdle < 0 {
		// A counter went backwards (overflow or sampling glitch); skip
		// this sample.
		return
	}

	total := dUser + dNice + dSystem + dIdle
	if total <= 0 {
		return
	}

	busy := (dUser + dNice + dSystem) / total

	s.usage = append(s.usage, busy)
	if len(s.usage) > usageWindow {
		s.usage = s.usage[len(s.usage)-usageWindow:]
	}
}

func (s *Sampler) sampleBandwidth() {
	max, e := maxInterfaceBandwidthKbps()
	if e != nil {
		if s.log != nil {
			s.log.Warn("monitor: bandwidth sample failed: " + e.Error())
		}
		return
	}

	s.mu.Lock()
	s.bw = max
	s.mu.Unlock()
}

func (s *Sampler) sampleMemory() {
	m, e := readSelfMemory()
	if e != nil {
		if s.log != nil {
			s.log.Warn("monitor: memory sample failed: " + e.Error())
		}
		return
	}

	s.mu.Lock()
	s.mem = m
	s.mu.Unlock()
}

// Info returns the current reading. Usage is the arithmetic mean of the
// last 6 samples; RTT is always zero here (filled in client-side).
func (s *Sampler) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Info{
		Usage:     meanOf(s.usage),
		Cores:     s.cores,
		Frequency: s.frequency,
		Bandwidth: s.bw,
	}
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, f := range v {
		sum += f
	}
	return sum / float64(len(v))
}

func errString(e error) string {
	if e == nil {
		return "no samples returned"
	}
	return e.Error()
}

// maxInterfaceBandwidthKbps walks the network interfaces: eth* queries the
// advertised link speed via an ETHTOOL_GSET ioctl (SIOCETHTOOL) and
// multiplies by 100 to reach kbps; wlan* is a hard-coded 30000 kbps;
// anything else is ignored. The maximum observed wins.
func maxInterfaceBandwidthKbps() (float64, error) {
	names, e := interfaceNames()
	if e != nil {
		return 0, e
	}

	var max float64

	for _, name := range names {
		var kbps float64

		switch {
		case strings.HasPrefix(name, "eth"):
			if speed, e := ethtoolSpeedMbps(name); e == nil && speed > 0 {
				kbps = float64(speed) * ethtoolMultiplier
			}
		case strings.HasPrefix(name, "wlan"):
			kbps = wlanBandwidthKbps
		default:
			continue
		}

		if kbps > max {
			max = kbps
		}
	}

	return max, nil
}

// ethtoolSpeedMbps issues SIOCETHTOOL/ETHTOOL_GSET on name and returns the
// advertised link speed in Mbps.
func ethtoolSpeedMbps(name string) (uint32, error) {
	fd, e := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if e != nil {
		return 0, e
	}
	defer unix.Close(fd)

	cmd := unix.EthtoolCmd{Cmd: unix.ETHTOOL_GSET}
	if e := unix.IoctlGetEthtoolCmd(fd, name, &cmd); e != nil {
		return 0, e
	}

	return cmd.Speed(), nil
}

func interfaceNames() ([]string, error) {
	entries, e := os.ReadDir("/sys/class/net")
	if e != nil {
		return nil, e
	}

	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names, nil
}

// readSelfMemory reads VmRSS, VmHWM, VmSize and VmPeak from
// /proc/self/status. These are sampled for local observation only and
// never transmitted on the wire.
func readSelfMemory() (memSample, error) {
	f, e := os.Open("/proc/self/status")
	if e != nil {
		return memSample{}, e
	}
	defer f.Close()

	var m memSample

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()

		var target *uint64
		switch {
		case strings.HasPrefix(line, "VmRSS:"):
			target = &m.VmRSS
		case strings.HasPrefix(line, "VmHWM:"):
			target = &m.VmHWM
		case strings.HasPrefix(line, "VmSize:"):
			target = &m.VmSize
		case strings.HasPrefix(line, "VmPeak:"):
			target = &m.VmPeak
		default:
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if v, e := strconv.ParseUint(fields[1], 10, 64); e == nil {
			*target = v
		}
	}

	return m, sc.Err()
}
