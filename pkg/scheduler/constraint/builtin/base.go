// Package builtin 提供内置排课约束
package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// 内置约束的检查顺序
const (
	OrderAvailability = (iota + 1) * 10
	OrderTeacherDoubleBooking
	OrderClassroomDoubleBooking
	OrderDailyLimit
	OrderEligibility
	OrderSubjectSlotUnique
	OrderMinCapacity
	OrderPinnedTeacher
)

// BaseCheck 约束基类
type BaseCheck struct {
	name  string
	typ   constraint.Type
	order int
}

// NewBaseCheck 创建基础约束
func NewBaseCheck(name string, typ constraint.Type, order int) *BaseCheck {
	return &BaseCheck{name: name, typ: typ, order: order}
}

// Name 返回约束名称
func (c *BaseCheck) Name() string { return c.name }

// Type 返回约束类型
func (c *BaseCheck) Type() constraint.Type { return c.typ }

// Order 返回检查顺序
func (c *BaseCheck) Order() int { return c.order }
