package stat

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/load"
)

const procUptime = "/proc/uptime"

// LoadAvg is the 1/5/15 minute load average triple, sampled fresh each
// tick.
type LoadAvg struct {
	One     float64
	Five    float64
	Fifteen float64
}

// SampleLoad reads the load averages. Failures zero the metric rather
// than interrupting the refresh.
func (s *Sampler) SampleLoad() LoadAvg {
	avg, err := load.Avg()
	if err != nil {
		return LoadAvg{}
	}
	return LoadAvg{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}
}

// Uptime reads /proc/uptime and returns machine uptime. The value is
// carried through jiffies (seconds and centiseconds scaled by the clock
// resolution) and converted back, so it stays consistent with the
// counter-based stats. Read failures yield zero.
func (s *Sampler) Uptime() time.Duration {
	data, err := os.ReadFile(procUptime)
	if err != nil {
		return 0
	}
	var sec, cent uint64
	if _, err := fmt.Sscanf(string(data), "%d.%d", &sec, &cent); err != nil {
		return 0
	}
	jiffies := float64(sec)*s.ticks + float64(cent)*s.ticks/100
	return time.Duration(jiffies / s.ticks * float64(time.Second))
}
