package constraint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
)

// Manager 约束管理器
type Manager struct {
	checks []Check
	mu     sync.RWMutex
	logger *logger.SchedulerLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		checks: make([]Check, 0),
		logger: logger.NewSchedulerLogger(),
	}
}

// Register 注册约束，同类型约束会被替换
func (m *Manager) Register(c Check) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.checks {
		if existing.Type() == c.Type() {
			m.checks[i] = c
			return
		}
	}

	m.checks = append(m.checks, c)

	// 按检查顺序排序
	sort.SliceStable(m.checks, func(i, j int) bool {
		return m.checks[i].Order() < m.checks[j].Order()
	})
}

// Unregister 注销约束
func (m *Manager) Unregister(t Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.checks {
		if c.Type() == t {
			m.checks = append(m.checks[:i], m.checks[i+1:]...)
			return
		}
	}
}

// GetCheck 获取约束
func (m *Manager) GetCheck(t Type) Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.checks {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 按检查顺序返回所有约束
func (m *Manager) GetAll() []Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Check, len(m.checks))
	copy(result, m.checks)
	return result
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checks)
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = make([]Check, 0)
}

// CanPlace 判断能否把课程放到 (教师, 教室, 时间段)
// 纯判断，不修改部分课表；遇到第一个失败的约束即返回 false
func (m *Manager) CanPlace(ctx *Context, subject *model.Subject, teacher *model.Teacher, classroom *model.Classroom, slot model.Timeslot) bool {
	ok, _ := m.Explain(ctx, subject, teacher, classroom, slot)
	return ok
}

// Explain 同 CanPlace，额外返回第一个失败的约束类型
func (m *Manager) Explain(ctx *Context, subject *model.Subject, teacher *model.Teacher, classroom *model.Classroom, slot model.Timeslot) (bool, Type) {
	p := Placement{Subject: subject, Teacher: teacher, Classroom: classroom, Slot: slot}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.checks {
		if !c.Allow(ctx, p) {
			return false, c.Type()
		}
	}
	return true, ""
}

// Replay 依次重放已有分配并逐条检查，返回所有违反项
// 用于校验外部提交的课表；违反的分配同样会被加入状态，以便继续检查后续分配
func (m *Manager) Replay(ctx *Context, assignments []model.Assignment) []ViolationDetail {
	var violations []ViolationDetail
	byCheck := make(map[string]int)

	for _, a := range assignments {
		subject := ctx.GetSubject(a.SubjectID)
		teacher := ctx.GetTeacher(a.TeacherID)
		classroom := ctx.GetClassroom(a.ClassroomID)
		if subject == nil || teacher == nil || classroom == nil {
			violations = append(violations, ViolationDetail{
				ConstraintType: TypeUnknownReference,
				ConstraintName: "引用检查",
				Assignment:     a,
				Message:        fmt.Sprintf("分配引用了不存在的课程/教师/教室: %s/%s/%s", a.SubjectID, a.TeacherID, a.ClassroomID),
			})
			byCheck[string(TypeUnknownReference)]++
			continue
		}

		if ok, failed := m.Explain(ctx, subject, teacher, classroom, a.Timeslot()); !ok {
			name := string(failed)
			if c := m.GetCheck(failed); c != nil {
				name = c.Name()
			}
			violations = append(violations, ViolationDetail{
				ConstraintType: failed,
				ConstraintName: name,
				Assignment:     a,
				Message:        fmt.Sprintf("课程 %s 在 %s 违反约束: %s", a.SubjectID, a.Timeslot(), name),
			})
			byCheck[string(failed)]++
		}
		ctx.Push(a)
	}

	m.logger.ReplayChecked(len(assignments), len(violations), byCheck)
	return violations
}

// Summary 返回约束摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make([]string, len(m.checks))
	for i, c := range m.checks {
		types[i] = string(c.Type())
	}

	return map[string]interface{}{
		"total": len(m.checks),
		"order": types,
	}
}
