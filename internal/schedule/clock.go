// Package schedule 时间窗规则与冲突检测（纯函数，无 IO）
package schedule

import (
	"fmt"
	"time"
)

// Clock 当天的分钟数（00:00 = 0）
type Clock int

const (
	Opening Clock = 8 * 60  // 08:00
	Closing Clock = 22 * 60 // 22:00

	DateLayout = "2006-01-02"
)

// ParseClock 只接受补零的 24 小时制 HH:MM
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	return Clock(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

func ParseDate(s string) (time.Time, error) { return time.Parse(DateLayout, s) }

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseInstant 解析会话开始时间；无时区的格式按 UTC
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q", s)
}

// NotBefore 按自然日比较：date 不早于 now 所在的那一天（当天允许）
func NotBefore(date string, now time.Time) (bool, error) {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return false, err
	}
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	return !d.Before(today), nil
}
