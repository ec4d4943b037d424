package builtin

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// Config 内置约束配置
type Config struct {
	// PinTeacher 同一课程的所有节次由同一位教师授课
	PinTeacher bool
}

// RegisterDefaultChecks 注册默认约束到管理器
// 前五项的顺序固定：可授课时间、教师冲突、教室冲突、每日上限、授课资格
func RegisterDefaultChecks(manager *constraint.Manager, cfg Config) {
	manager.Register(NewAvailabilityCheck())
	manager.Register(NewTeacherDoubleBookingCheck())
	manager.Register(NewClassroomDoubleBookingCheck())
	manager.Register(NewDailyLimitCheck())
	manager.Register(NewEligibilityCheck())

	manager.Register(NewSubjectSlotUniqueCheck())
	manager.Register(NewMinCapacityCheck())

	if cfg.PinTeacher {
		manager.Register(NewPinnedTeacherCheck())
	}
}

// NewDefaultManager 创建并注册默认约束
func NewDefaultManager(cfg Config) *constraint.Manager {
	m := constraint.NewManager()
	RegisterDefaultChecks(m, cfg)
	return m
}
