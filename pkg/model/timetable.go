package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Assignment 课表分配（输出单元）
type Assignment struct {
	SubjectID   string `json:"subject_id" db:"subject_id" validate:"required"`
	TeacherID   string `json:"teacher_id" db:"teacher_id" validate:"required"`
	ClassroomID string `json:"classroom_id" db:"classroom_id" validate:"required"`
	Day         Day    `json:"day" db:"day" validate:"min=1,max=7"`
	Period      int    `json:"period" db:"period" validate:"min=1"`
}

// Timeslot 返回分配所在的时间段
func (a Assignment) Timeslot() Timeslot {
	return Timeslot{Day: a.Day, Period: a.Period}
}

// Less 按 (星期, 节次, 课程, 教师, 教室) 比较，保证全序
func (a Assignment) Less(other Assignment) bool {
	if a.Day != other.Day {
		return a.Day < other.Day
	}
	if a.Period != other.Period {
		return a.Period < other.Period
	}
	if a.SubjectID != other.SubjectID {
		return a.SubjectID < other.SubjectID
	}
	if a.TeacherID != other.TeacherID {
		return a.TeacherID < other.TeacherID
	}
	return a.ClassroomID < other.ClassroomID
}

// Shortfall 尽力模式下未完成排课的课程
type Shortfall struct {
	SubjectID string `json:"subject_id"`
	Required  int    `json:"required"`
	Placed    int    `json:"placed"`
}

// SearchStats 搜索统计
type SearchStats struct {
	Nodes      int           `json:"nodes"`
	Backtracks int           `json:"backtracks"`
	MaxDepth   int           `json:"max_depth"`
	Required   int           `json:"required"`
	Placed     int           `json:"placed"`
	Duration   time.Duration `json:"duration"`
}

// Timetable 课表
type Timetable struct {
	ID          uuid.UUID    `json:"id"`
	Assignments []Assignment `json:"assignments"`
	Subjects    []Subject    `json:"subjects,omitempty"`
	Unscheduled []Shortfall  `json:"unscheduled,omitempty"`
	Statistics  SearchStats  `json:"statistics"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// NewTimetable 创建课表
func NewTimetable(assignments []Assignment) *Timetable {
	return &Timetable{
		ID:          uuid.New(),
		Assignments: assignments,
		GeneratedAt: time.Now(),
	}
}

// Len 返回分配数量
func (t *Timetable) Len() int {
	return len(t.Assignments)
}

// IsComplete 所有课程都已完整排课
func (t *Timetable) IsComplete() bool {
	return len(t.Unscheduled) == 0
}

// CountBySubject 按课程统计分配数
func (t *Timetable) CountBySubject() map[string]int {
	return lo.CountValuesBy(t.Assignments, func(a Assignment) string { return a.SubjectID })
}

// ByTeacher 按教师分组
func (t *Timetable) ByTeacher() map[string][]Assignment {
	return lo.GroupBy(t.Assignments, func(a Assignment) string { return a.TeacherID })
}

// ByClassroom 按教室分组
func (t *Timetable) ByClassroom() map[string][]Assignment {
	return lo.GroupBy(t.Assignments, func(a Assignment) string { return a.ClassroomID })
}

// TeacherOf 返回课程第一条分配的教师
func (t *Timetable) TeacherOf(subjectID string) (string, bool) {
	a, ok := lo.Find(t.Assignments, func(a Assignment) bool { return a.SubjectID == subjectID })
	if !ok {
		return "", false
	}
	return a.TeacherID, true
}
