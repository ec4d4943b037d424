package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// TeacherDoubleBookingCheck 教师同一时间段只能上一节课
type TeacherDoubleBookingCheck struct {
	*BaseCheck
}

// NewTeacherDoubleBookingCheck 创建教师冲突约束
func NewTeacherDoubleBookingCheck() *TeacherDoubleBookingCheck {
	return &TeacherDoubleBookingCheck{
		BaseCheck: NewBaseCheck("教师时间冲突", constraint.TypeTeacherDoubleBooking, OrderTeacherDoubleBooking),
	}
}

// Allow 教师在该时间段没有其他分配
func (c *TeacherDoubleBookingCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	return !ctx.IsTeacherBusy(p.Teacher.ID, p.Slot)
}

// ClassroomDoubleBookingCheck 教室同一时间段只能安排一节课
type ClassroomDoubleBookingCheck struct {
	*BaseCheck
}

// NewClassroomDoubleBookingCheck 创建教室冲突约束
func NewClassroomDoubleBookingCheck() *ClassroomDoubleBookingCheck {
	return &ClassroomDoubleBookingCheck{
		BaseCheck: NewBaseCheck("教室时间冲突", constraint.TypeClassroomDoubleBooking, OrderClassroomDoubleBooking),
	}
}

// Allow 教室在该时间段未被占用
func (c *ClassroomDoubleBookingCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	return !ctx.IsClassroomBusy(p.Classroom.ID, p.Slot)
}
