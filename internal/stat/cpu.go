package stat

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tklauser/go-sysconf"
)

const procStat = "/proc/stat"

// CpuSample holds the raw jiffy counters of the aggregate "cpu " line of
// /proc/stat.
type CpuSample struct {
	User      uint64
	Nice      uint64
	Sys       uint64
	Idle      uint64
	Iowait    uint64
	Steal     uint64
	Hardirq   uint64
	Softirq   uint64
	Guest     uint64
	GuestNice uint64
}

// Total returns the sum of all counters; adjacent totals bound the tick
// interval.
func (s CpuSample) Total() uint64 {
	return s.User + s.Nice + s.Sys + s.Idle + s.Iowait +
		s.Steal + s.Hardirq + s.Softirq + s.Guest + s.GuestNice
}

// CpuPercent is one tick's per-category CPU usage. Sys aggregates
// sys+hardirq+softirq; the irq shares are also reported individually.
type CpuPercent struct {
	User    float64
	Sys     float64
	Nice    float64
	Idle    float64
	Iowait  float64
	Hardirq float64
	Softirq float64
	Steal   float64
}

// Sampler reads host statistics each tick. It keeps the previous and
// current CPU samples as an explicit pair that flips on every read.
type Sampler struct {
	ticks float64 // clock resolution, read once
	prev  CpuSample
	curr  CpuSample
}

// NewSampler probes /proc/stat once and reads the clock resolution.
// An unreadable /proc/stat is a startup-fatal condition.
func NewSampler() (*Sampler, error) {
	s := &Sampler{ticks: 100}
	if t, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err == nil && t > 0 {
		s.ticks = float64(t)
	}
	sample, err := readCpuSample()
	if err != nil {
		return nil, err
	}
	s.curr = sample
	return s, nil
}

// Ticks returns the kernel clock resolution in intervals per second.
func (s *Sampler) Ticks() float64 {
	return s.ticks
}

// SampleCpu reads /proc/stat and flips the previous/current pair.
func (s *Sampler) SampleCpu() error {
	sample, err := readCpuSample()
	if err != nil {
		return err
	}
	s.prev, s.curr = s.curr, sample
	return nil
}

// Percentages computes per-category CPU usage from the current pair.
// Dyn-tick kernels can make individual counters go backward; a category
// that regressed reports 0.0 instead of a negative share.
func (s *Sampler) Percentages() CpuPercent {
	interval := s.curr.Total() - s.prev.Total()
	if interval == 0 {
		interval = 1
	}
	pct := func(prev, curr uint64) float64 {
		if curr < prev {
			return 0.0
		}
		return float64(curr-prev) / float64(interval) * 100
	}
	return CpuPercent{
		User: pct(s.prev.User, s.curr.User),
		Sys: pct(s.prev.Sys+s.prev.Hardirq+s.prev.Softirq,
			s.curr.Sys+s.curr.Hardirq+s.curr.Softirq),
		Nice:    pct(s.prev.Nice, s.curr.Nice),
		Idle:    pct(s.prev.Idle, s.curr.Idle),
		Iowait:  pct(s.prev.Iowait, s.curr.Iowait),
		Hardirq: pct(s.prev.Hardirq, s.curr.Hardirq),
		Softirq: pct(s.prev.Softirq, s.curr.Softirq),
		Steal:   pct(s.prev.Steal, s.curr.Steal),
	}
}

// readCpuSample parses the aggregate "cpu " line of /proc/stat.
func readCpuSample() (CpuSample, error) {
	f, err := os.Open(procStat)
	if err != nil {
		return CpuSample{}, fmt.Errorf("open %s: %w", procStat, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		var s CpuSample
		_, err := fmt.Sscanf(line[4:], "%d %d %d %d %d %d %d %d %d %d",
			&s.User, &s.Nice, &s.Sys, &s.Idle, &s.Iowait,
			&s.Hardirq, &s.Softirq, &s.Steal, &s.Guest, &s.GuestNice)
		if err != nil {
			return CpuSample{}, fmt.Errorf("parse %s: %w", procStat, err)
		}
		return s, nil
	}
	if err := scanner.Err(); err != nil {
		return CpuSample{}, fmt.Errorf("read %s: %w", procStat, err)
	}
	return CpuSample{}, fmt.Errorf("%s: no cpu line", procStat)
}
