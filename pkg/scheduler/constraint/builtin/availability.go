package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// AvailabilityCheck 教师可授课时间
type AvailabilityCheck struct {
	*BaseCheck
}

// NewAvailabilityCheck 创建可授课时间约束
func NewAvailabilityCheck() *AvailabilityCheck {
	return &AvailabilityCheck{
		BaseCheck: NewBaseCheck("教师可授课时间", constraint.TypeAvailability, OrderAvailability),
	}
}

// Allow 时间段必须在教师的可授课时间内
func (c *AvailabilityCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	return ctx.IsTeacherAvailable(p.Teacher.ID, p.Slot)
}
