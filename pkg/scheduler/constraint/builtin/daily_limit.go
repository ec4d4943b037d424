package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// DailyLimitCheck 教师每日最大节数
type DailyLimitCheck struct {
	*BaseCheck
}

// NewDailyLimitCheck 创建每日节数约束
func NewDailyLimitCheck() *DailyLimitCheck {
	return &DailyLimitCheck{
		BaseCheck: NewBaseCheck("教师每日节数上限", constraint.TypeDailyLimit, OrderDailyLimit),
	}
}

// Allow 教师当天已排节数必须小于上限
func (c *DailyLimitCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	return ctx.TeacherDayCount(p.Teacher.ID, p.Slot.Day) < p.Teacher.DailyLimit
}
