package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// EligibilityCheck 教师授课资格
type EligibilityCheck struct {
	*BaseCheck
}

// NewEligibilityCheck 创建授课资格约束
func NewEligibilityCheck() *EligibilityCheck {
	return &EligibilityCheck{
		BaseCheck: NewBaseCheck("教师授课资格", constraint.TypeEligibility, OrderEligibility),
	}
}

// Allow 教师必须在课程的可授课教师名单中
func (c *EligibilityCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	return p.Subject.IsEligible(p.Teacher.ID)
}
