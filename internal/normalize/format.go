package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count in the largest fitting binary unit with at
// most two decimals, e.g. 1536 -> "1.5 KB".
func FormatBytes(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	value := float64(bytes)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	rounded := math.Round(value*100) / 100
	return sign + strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[unit]
}

// FormatUptime returns the router uptime text for display.
func FormatUptime(uptime string) string {
	uptime = strings.TrimSpace(uptime)
	if uptime == "" {
		return DefaultUptime
	}
	return uptime
}

// MemoryUsage returns used memory as a percentage with one decimal.
func MemoryUsage(info model.RouterSystemInfo) string {
	if info.TotalMemory <= 0 {
		return "N/A"
	}
	used := info.TotalMemory - info.FreeMemory
	pct := float64(used) / float64(info.TotalMemory) * 100
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}

// ParseDuration parses RouterOS durations such as "5w3d12h30m15s" or "01:02:03".
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Contains(value, ":") {
		return parseClock(value)
	}

	mult := map[byte]time.Duration{
		'w': 7 * 24 * time.Hour,
		'd': 24 * time.Hour,
		'h': time.Hour,
		'm': time.Minute,
		's': time.Second,
	}

	var dur time.Duration
	number := ""
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch >= '0' && ch <= '9' {
			number += string(ch)
			continue
		}
		if ch == 'm' && i+1 < len(value) && value[i+1] == 's' {
			v, err := strconv.Atoi(number)
			if err != nil {
				return 0, fmt.Errorf("invalid duration segment: %s", value)
			}
			dur += time.Duration(v) * time.Millisecond
			number = ""
			i++
			continue
		}
		unit, ok := mult[ch]
		if !ok || number == "" {
			return 0, fmt.Errorf("invalid duration segment: %s", value)
		}
		v, err := strconv.Atoi(number)
		if err != nil {
			return 0, err
		}
		dur += time.Duration(v) * unit
		number = ""
	}
	if number != "" {
		v, err := strconv.Atoi(number)
		if err != nil {
			return 0, err
		}
		dur += time.Duration(v) * time.Second
	}
	return dur, nil
}

func parseClock(value string) (time.Duration, error) {
	var days time.Duration
	if idx := strings.IndexByte(value, 'd'); idx > 0 {
		d, err := strconv.Atoi(value[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid day prefix: %s", value)
		}
		days = time.Duration(d) * 24 * time.Hour
		value = value[idx+1:]
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid hh:mm:ss: %s", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}
	return days + time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, nil
}
