package schedule

import (
	"time"

	"studybuddy/internal/domain"
)

// Slot 同一作用域（房间+日期）内的半开区间 [Start, End)
type Slot struct {
	ID    string
	Start Clock
	End   Clock
}

// Overlaps 半开区间重叠：端点相接不算冲突，且对称
func Overlaps(a, b Slot) bool { return a.Start < b.End && a.End > b.Start }

// FirstConflict 返回第一个与 candidate 重叠的已有区间；candidate.ID 非空时排除自身
func FirstConflict(existing []Slot, candidate Slot) (Slot, bool) {
	for _, e := range existing {
		if candidate.ID != "" && e.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate, e) {
			return e, true
		}
	}
	return Slot{}, false
}

// HasConflict 创建与更新共用的唯一冲突判定
func HasConflict(existing []Slot, candidate Slot) bool {
	_, ok := FirstConflict(existing, candidate)
	return ok
}

// SlotOf 把预约转成区间；调用前须已通过 hhmm 校验
func SlotOf(r domain.Reservation) (Slot, error) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Slot{}, err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return Slot{}, err
	}
	return Slot{ID: r.ID, Start: start, End: end}, nil
}

// CheckWindow start < end，且落在营业时间 [08:00, 22:00] 内
func CheckWindow(s Slot) error {
	if s.Start >= s.End {
		return domain.Fail(domain.CodeInvalidTime, "end time must be after start time")
	}
	if s.Start < Opening || s.End > Closing {
		return domain.Fail(domain.CodeOutsideOpeningHours, "reservations must be between 08:00 and 22:00")
	}
	return nil
}

// SameInstant 会话按 (location, startTime) 精确去重
func SameInstant(a, b time.Time) bool { return a.Equal(b) }
