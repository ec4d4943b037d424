// Package constraint 定义排课约束接口、搜索状态和管理器
package constraint

import (
	"github.com/paiban/kebiao/pkg/model"
)

// Type 约束类型标识
type Type string

const (
	TypeAvailability           Type = "availability"
	TypeTeacherDoubleBooking   Type = "teacher_double_booking"
	TypeClassroomDoubleBooking Type = "classroom_double_booking"
	TypeDailyLimit             Type = "daily_limit"
	TypeEligibility            Type = "eligibility"
	TypeSubjectSlotUnique      Type = "subject_slot_unique"
	TypeMinCapacity            Type = "min_capacity"
	TypePinnedTeacher          Type = "pinned_teacher"
	TypeUnknownReference       Type = "unknown_reference"
)

// Check 排课约束接口，所有约束均为硬约束
type Check interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Order 返回检查顺序，越小越先检查
	Order() int

	// Allow 判断候选位置是否可行，不修改状态
	Allow(ctx *Context, p Placement) bool
}

// Placement 候选位置
type Placement struct {
	Subject   *model.Subject
	Teacher   *model.Teacher
	Classroom *model.Classroom
	Slot      model.Timeslot
}

// Assignment 转换为分配记录
func (p Placement) Assignment() model.Assignment {
	return model.Assignment{
		SubjectID:   p.Subject.ID,
		TeacherID:   p.Teacher.ID,
		ClassroomID: p.Classroom.ID,
		Day:         p.Slot.Day,
		Period:      p.Slot.Period,
	}
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type             `json:"constraint_type"`
	ConstraintName string           `json:"constraint_name"`
	Assignment     model.Assignment `json:"assignment"`
	Message        string           `json:"message"`
}

// slotKey 资源 + 时间段
type slotKey struct {
	id   string
	slot model.Timeslot
}

// dayKey 资源 + 星期
type dayKey struct {
	id  string
	day model.Day
}

// Context 单次排课请求的搜索状态
// 持有只读输入和可撤销的部分课表，不在请求之间共享
type Context struct {
	RunID string
	Grid  model.Grid

	Teachers   []*model.Teacher
	Classrooms []*model.Classroom
	Subjects   []*model.Subject

	teacherMap   map[string]*model.Teacher
	classroomMap map[string]*model.Classroom
	subjectMap   map[string]*model.Subject
	availability map[string]map[model.Timeslot]bool

	// 部分课表（栈）
	assignments []model.Assignment

	// 索引
	teacherBusy    map[slotKey]bool
	classroomBusy  map[slotKey]bool
	subjectBusy    map[slotKey]bool
	teacherDaily   map[dayKey]int
	subjectPlaced  map[string]int
	subjectTeacher map[string]string
}

// NewContext 创建搜索状态
func NewContext(grid model.Grid, teachers []*model.Teacher, classrooms []*model.Classroom, subjects []*model.Subject) *Context {
	c := &Context{
		Grid:         grid,
		Teachers:     teachers,
		Classrooms:   classrooms,
		Subjects:     subjects,
		teacherMap:   make(map[string]*model.Teacher, len(teachers)),
		classroomMap: make(map[string]*model.Classroom, len(classrooms)),
		subjectMap:   make(map[string]*model.Subject, len(subjects)),
		availability: make(map[string]map[model.Timeslot]bool, len(teachers)),
	}
	for _, t := range teachers {
		c.teacherMap[t.ID] = t
		c.availability[t.ID] = t.AvailabilitySet()
	}
	for _, r := range classrooms {
		c.classroomMap[r.ID] = r
	}
	for _, s := range subjects {
		c.subjectMap[s.ID] = s
	}
	c.Reset()
	return c
}

// Reset 清空部分课表
func (c *Context) Reset() {
	c.assignments = make([]model.Assignment, 0)
	c.teacherBusy = make(map[slotKey]bool)
	c.classroomBusy = make(map[slotKey]bool)
	c.subjectBusy = make(map[slotKey]bool)
	c.teacherDaily = make(map[dayKey]int)
	c.subjectPlaced = make(map[string]int)
	c.subjectTeacher = make(map[string]string)
}

// Push 加入一条分配并更新索引
func (c *Context) Push(a model.Assignment) {
	ts := a.Timeslot()
	c.assignments = append(c.assignments, a)
	c.teacherBusy[slotKey{a.TeacherID, ts}] = true
	c.classroomBusy[slotKey{a.ClassroomID, ts}] = true
	c.subjectBusy[slotKey{a.SubjectID, ts}] = true
	c.teacherDaily[dayKey{a.TeacherID, a.Day}]++
	if c.subjectPlaced[a.SubjectID] == 0 {
		c.subjectTeacher[a.SubjectID] = a.TeacherID
	}
	c.subjectPlaced[a.SubjectID]++
}

// Pop 撤销最近一次 Push，返回被撤销的分配
func (c *Context) Pop() (model.Assignment, bool) {
	n := len(c.assignments)
	if n == 0 {
		return model.Assignment{}, false
	}
	a := c.assignments[n-1]
	c.assignments = c.assignments[:n-1]

	ts := a.Timeslot()
	delete(c.teacherBusy, slotKey{a.TeacherID, ts})
	delete(c.classroomBusy, slotKey{a.ClassroomID, ts})
	delete(c.subjectBusy, slotKey{a.SubjectID, ts})

	dk := dayKey{a.TeacherID, a.Day}
	if c.teacherDaily[dk]--; c.teacherDaily[dk] <= 0 {
		delete(c.teacherDaily, dk)
	}
	if c.subjectPlaced[a.SubjectID]--; c.subjectPlaced[a.SubjectID] <= 0 {
		delete(c.subjectPlaced, a.SubjectID)
		delete(c.subjectTeacher, a.SubjectID)
	}
	return a, true
}

// Len 部分课表中的分配数
func (c *Context) Len() int {
	return len(c.assignments)
}

// Assignments 返回部分课表副本
func (c *Context) Assignments() []model.Assignment {
	out := make([]model.Assignment, len(c.assignments))
	copy(out, c.assignments)
	return out
}

// GetTeacher 获取教师
func (c *Context) GetTeacher(id string) *model.Teacher {
	return c.teacherMap[id]
}

// GetClassroom 获取教室
func (c *Context) GetClassroom(id string) *model.Classroom {
	return c.classroomMap[id]
}

// GetSubject 获取课程
func (c *Context) GetSubject(id string) *model.Subject {
	return c.subjectMap[id]
}

// IsTeacherAvailable 教师在该时间段是否可授课
func (c *Context) IsTeacherAvailable(teacherID string, ts model.Timeslot) bool {
	return c.availability[teacherID][ts]
}

// IsTeacherBusy 教师在该时间段是否已有课
func (c *Context) IsTeacherBusy(teacherID string, ts model.Timeslot) bool {
	return c.teacherBusy[slotKey{teacherID, ts}]
}

// IsClassroomBusy 教室在该时间段是否已占用
func (c *Context) IsClassroomBusy(classroomID string, ts model.Timeslot) bool {
	return c.classroomBusy[slotKey{classroomID, ts}]
}

// IsSubjectBusy 课程在该时间段是否已排
func (c *Context) IsSubjectBusy(subjectID string, ts model.Timeslot) bool {
	return c.subjectBusy[slotKey{subjectID, ts}]
}

// TeacherDayCount 教师当天已排节数
func (c *Context) TeacherDayCount(teacherID string, day model.Day) int {
	return c.teacherDaily[dayKey{teacherID, day}]
}

// SubjectPlaced 课程已排节数
func (c *Context) SubjectPlaced(subjectID string) int {
	return c.subjectPlaced[subjectID]
}

// SubjectTeacher 课程首个分配的教师
func (c *Context) SubjectTeacher(subjectID string) (string, bool) {
	id, ok := c.subjectTeacher[subjectID]
	return id, ok
}
