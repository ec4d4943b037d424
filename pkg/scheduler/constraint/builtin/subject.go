package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// SubjectSlotUniqueCheck 同一课程的各节必须在不同时间段
type SubjectSlotUniqueCheck struct {
	*BaseCheck
}

// NewSubjectSlotUniqueCheck 创建课程时间段唯一约束
func NewSubjectSlotUniqueCheck() *SubjectSlotUniqueCheck {
	return &SubjectSlotUniqueCheck{
		BaseCheck: NewBaseCheck("课程时间段唯一", constraint.TypeSubjectSlotUnique, OrderSubjectSlotUnique),
	}
}

// Allow 课程在该时间段尚未安排
func (c *SubjectSlotUniqueCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	return !ctx.IsSubjectBusy(p.Subject.ID, p.Slot)
}

// MinCapacityCheck 教室容量不低于课程要求
// 课程未声明最低容量时总是通过
type MinCapacityCheck struct {
	*BaseCheck
}

// NewMinCapacityCheck 创建最低容量约束
func NewMinCapacityCheck() *MinCapacityCheck {
	return &MinCapacityCheck{
		BaseCheck: NewBaseCheck("教室最低容量", constraint.TypeMinCapacity, OrderMinCapacity),
	}
}

// Allow 教室容量满足课程最低容量
func (c *MinCapacityCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	if !p.Subject.HasCapacityRequirement() {
		return true
	}
	return p.Classroom.Fits(p.Subject.MinCapacity)
}

// PinnedTeacherCheck 同一课程的所有节次由同一位教师授课
type PinnedTeacherCheck struct {
	*BaseCheck
}

// NewPinnedTeacherCheck 创建固定教师约束
func NewPinnedTeacherCheck() *PinnedTeacherCheck {
	return &PinnedTeacherCheck{
		BaseCheck: NewBaseCheck("课程固定教师", constraint.TypePinnedTeacher, OrderPinnedTeacher),
	}
}

// Allow 课程已有分配时，只能继续使用同一位教师
func (c *PinnedTeacherCheck) Allow(ctx *constraint.Context, p constraint.Placement) bool {
	teacherID, ok := ctx.SubjectTeacher(p.Subject.ID)
	return !ok || teacherID == p.Teacher.ID
}
