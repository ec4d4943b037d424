// Package validator 提供课表校验功能
package validator

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictTeacherOverlap   ConflictType = "teacher_overlap"   // 教师同一时间段多节课
	ConflictClassroomOverlap ConflictType = "classroom_overlap" // 教室同一时间段多节课
	ConflictSubjectOverlap   ConflictType = "subject_overlap"   // 课程同一时间段重复
	ConflictAvailability     ConflictType = "availability"      // 不在可授课时间
	ConflictDailyLimit       ConflictType = "daily_limit"       // 超过每日节数
)

// Conflict 冲突信息
type Conflict struct {
	Type        ConflictType       `json:"type"`
	Severity    string             `json:"severity"` // error/warning
	ResourceID  string             `json:"resource_id"`
	Day         model.Day          `json:"day"`
	Period      int                `json:"period,omitempty"`
	Message     string             `json:"message"`
	Assignments []model.Assignment `json:"assignments,omitempty"` // 相关的分配
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	CheckAvailability bool // 是否检查可授课时间
	CheckDailyLimit   bool // 是否检查每日节数
	CheckSubjectSlots bool // 是否检查课程重复时间段
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		CheckAvailability: true,
		CheckDailyLimit:   true,
		CheckSubjectSlots: true,
	}
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// DetectAll 检测所有冲突，结果顺序确定
// teachers 为空时跳过依赖教师信息的检查
func (d *ConflictDetector) DetectAll(assignments []model.Assignment, teachers map[string]*model.Teacher) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, d.detectOverlaps(assignments, ConflictTeacherOverlap, func(a model.Assignment) string { return a.TeacherID })...)
	conflicts = append(conflicts, d.detectOverlaps(assignments, ConflictClassroomOverlap, func(a model.Assignment) string { return a.ClassroomID })...)

	if d.config.CheckSubjectSlots {
		conflicts = append(conflicts, d.detectOverlaps(assignments, ConflictSubjectOverlap, func(a model.Assignment) string { return a.SubjectID })...)
	}
	if d.config.CheckAvailability && teachers != nil {
		conflicts = append(conflicts, d.detectAvailabilityViolations(assignments, teachers)...)
	}
	if d.config.CheckDailyLimit && teachers != nil {
		conflicts = append(conflicts, d.detectDailyLimitViolations(assignments, teachers)...)
	}

	return conflicts
}

// DetectHard 只检测教师和教室的时间冲突
func (d *ConflictDetector) DetectHard(assignments []model.Assignment) []Conflict {
	var conflicts []Conflict
	conflicts = append(conflicts, d.detectOverlaps(assignments, ConflictTeacherOverlap, func(a model.Assignment) string { return a.TeacherID })...)
	conflicts = append(conflicts, d.detectOverlaps(assignments, ConflictClassroomOverlap, func(a model.Assignment) string { return a.ClassroomID })...)
	return conflicts
}

// DetectForAssignment 检测新分配与已有分配的冲突
func (d *ConflictDetector) DetectForAssignment(
	newAssignment model.Assignment,
	existingAssignments []model.Assignment,
	teacher *model.Teacher,
) []Conflict {
	var conflicts []Conflict
	ts := newAssignment.Timeslot()

	for _, existing := range existingAssignments {
		if existing.Timeslot() != ts {
			continue
		}
		if existing.TeacherID == newAssignment.TeacherID {
			conflicts = append(conflicts, newConflict(ConflictTeacherOverlap, newAssignment.TeacherID, ts,
				fmt.Sprintf("教师 %s 在 %s 已有课程 %s", newAssignment.TeacherID, ts, existing.SubjectID),
				newAssignment, existing))
		}
		if existing.ClassroomID == newAssignment.ClassroomID {
			conflicts = append(conflicts, newConflict(ConflictClassroomOverlap, newAssignment.ClassroomID, ts,
				fmt.Sprintf("教室 %s 在 %s 已被课程 %s 占用", newAssignment.ClassroomID, ts, existing.SubjectID),
				newAssignment, existing))
		}
	}

	if teacher == nil {
		return conflicts
	}

	if d.config.CheckAvailability && !teacher.IsAvailable(ts) {
		conflicts = append(conflicts, newConflict(ConflictAvailability, teacher.ID, ts,
			fmt.Sprintf("教师 %s 在 %s 不可授课", teacher.DisplayName(), ts), newAssignment))
	}

	if d.config.CheckDailyLimit {
		count := 1 + lo.CountBy(existingAssignments, func(a model.Assignment) bool {
			return a.TeacherID == teacher.ID && a.Day == newAssignment.Day
		})
		if count > teacher.DailyLimit {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictDailyLimit,
				Severity:   "error",
				ResourceID: teacher.ID,
				Day:        newAssignment.Day,
				Message:    fmt.Sprintf("教师 %s 在 %s 共 %d 节，超过限制 %d 节", teacher.DisplayName(), newAssignment.Day, count, teacher.DailyLimit),
			})
		}
	}

	return conflicts
}

// detectOverlaps 按资源检测同一时间段的重复分配
func (d *ConflictDetector) detectOverlaps(assignments []model.Assignment, typ ConflictType, resource func(model.Assignment) string) []Conflict {
	type key struct {
		id string
		ts model.Timeslot
	}

	groups := lo.GroupBy(assignments, func(a model.Assignment) key {
		return key{resource(a), a.Timeslot()}
	})

	keys := lo.Keys(groups)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].ts.Less(keys[j].ts)
	})

	var conflicts []Conflict
	for _, k := range keys {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, newConflict(typ, k.id, k.ts,
			fmt.Sprintf("%s 在 %s 有 %d 条分配", k.id, k.ts, len(group)), group...))
	}
	return conflicts
}

// detectAvailabilityViolations 检测不在可授课时间的分配
func (d *ConflictDetector) detectAvailabilityViolations(assignments []model.Assignment, teachers map[string]*model.Teacher) []Conflict {
	var conflicts []Conflict

	for _, a := range assignments {
		teacher := teachers[a.TeacherID]
		if teacher == nil {
			continue
		}
		if !teacher.IsAvailable(a.Timeslot()) {
			conflicts = append(conflicts, newConflict(ConflictAvailability, teacher.ID, a.Timeslot(),
				fmt.Sprintf("教师 %s 在 %s 不可授课", teacher.DisplayName(), a.Timeslot()), a))
		}
	}

	return conflicts
}

// detectDailyLimitViolations 检测超过每日节数的教师
func (d *ConflictDetector) detectDailyLimitViolations(assignments []model.Assignment, teachers map[string]*model.Teacher) []Conflict {
	type key struct {
		id  string
		day model.Day
	}

	counts := lo.CountValuesBy(assignments, func(a model.Assignment) key {
		return key{a.TeacherID, a.Day}
	})

	keys := lo.Keys(counts)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].day < keys[j].day
	})

	var conflicts []Conflict
	for _, k := range keys {
		teacher := teachers[k.id]
		if teacher == nil || counts[k] <= teacher.DailyLimit {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:       ConflictDailyLimit,
			Severity:   "error",
			ResourceID: k.id,
			Day:        k.day,
			Message:    fmt.Sprintf("教师 %s 在 %s 共 %d 节，超过限制 %d 节", teacher.DisplayName(), k.day, counts[k], teacher.DailyLimit),
		})
	}

	return conflicts
}

func newConflict(typ ConflictType, resourceID string, ts model.Timeslot, msg string, related ...model.Assignment) Conflict {
	return Conflict{
		Type:        typ,
		Severity:    "error",
		ResourceID:  resourceID,
		Day:         ts.Day,
		Period:      ts.Period,
		Message:     msg,
		Assignments: related,
	}
}
