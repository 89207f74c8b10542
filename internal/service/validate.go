package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"studybuddy/internal/domain"
	"studybuddy/internal/schedule"
)

// Rules 校验规则：结构/类型用 validator 标签，时间窗与日期走 schedule
type Rules struct {
	v *validator.Validate
}

func NewRules() *Rules {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误里使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("sessiontype", func(fl validator.FieldLevel) bool {
		switch domain.SessionType(fl.Field().String()) {
		case domain.SessionPresential, domain.SessionVirtual, domain.SessionExternal:
			return true
		}
		return false
	})
	return &Rules{v: v}
}

// Check 结构校验，失败统一为 INVALID_INPUT + 字段原因
func (r *Rules) Check(kind string, v any) error {
	err := r.v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = formatFieldError(fe)
	}
	return domain.Invalid("invalid "+kind, fields)
}

// fieldPath "Session.participants[0]" → "participants[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "contains":
		return "must contain " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "hhmm":
		return "must be a zero-padded HH:MM time"
	case "isodate":
		return "must be a YYYY-MM-DD date"
	case "sessiontype":
		return "must be one of presential, virtual, external"
	}
	return "is invalid"
}

func (r *Rules) Room(room domain.Room) error { return r.Check("study room", room) }

func (r *Rules) User(u domain.User) error { return r.Check("user", u) }

// Session 结构校验 + 人数不超过容量 + 创建者始终在参与者中
func (r *Rules) Session(s domain.Session) error {
	if err := r.Check("study session", s); err != nil {
		return err
	}
	if len(s.Participants) > s.Capacity {
		return domain.Invalid("invalid study session", map[string]string{
			"capacity": "must not be less than the number of participants",
		})
	}
	if !s.HasParticipant(s.OwnerID) {
		return domain.Invalid("invalid study session", map[string]string{
			"participants": "must include the owner",
		})
	}
	return nil
}

// Reservation 顺序：INVALID_INPUT → INVALID_TIME → OUTSIDE_OPENING_HOURS → INVALID_DATE
func (r *Rules) Reservation(res domain.Reservation, now time.Time) error {
	if err := r.Check("reservation", res); err != nil {
		return err
	}
	slot, err := schedule.SlotOf(res)
	if err != nil {
		return domain.Invalid("invalid reservation", map[string]string{"startTime": err.Error()})
	}
	if err := schedule.CheckWindow(slot); err != nil {
		return err
	}
	ok, err := schedule.NotBefore(res.Date, now)
	if err != nil {
		return domain.Invalid("invalid reservation", map[string]string{"date": "must be a YYYY-MM-DD date"})
	}
	if !ok {
		return domain.Fail(domain.CodeInvalidDate, "reservation date must not be in the past")
	}
	return nil
}
