// Package constraints 约束库：描述引擎内置的冲突检查
package constraints

import (
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
	"github.com/paiban/kebiao/pkg/scheduler/constraint/builtin"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, string, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"` // 内置检查均为 hard
	Category    string            `json:"category"`
	Order       int               `json:"order"`
	Optional    bool              `json:"optional"`
	Description string            `json:"description"`
	Params      []ConstraintParam `json:"params,omitempty"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

type entry struct {
	category    string
	description string
	optional    bool
	params      []ConstraintParam
}

var descriptions = map[constraint.Type]entry{
	constraint.TypeAvailability: {
		category:    "资源",
		description: "时间段必须在教师的可授课时间内。",
		params: []ConstraintParam{
			{Name: "availability", Type: "array", Description: "教师可授课时间段 (day, period)"},
		},
	},
	constraint.TypeTeacherDoubleBooking: {
		category:    "冲突",
		description: "同一教师在同一时间段只能上一节课。",
	},
	constraint.TypeClassroomDoubleBooking: {
		category:    "冲突",
		description: "同一教室在同一时间段只能安排一节课。",
	},
	constraint.TypeDailyLimit: {
		category:    "工作量",
		description: "教师当天已排节数必须小于每日上限。",
		params: []ConstraintParam{
			{Name: "daily_limit", Type: "int", Description: "教师每日最多节数", Min: "1"},
		},
	},
	constraint.TypeEligibility: {
		category:    "资质",
		description: "教师必须在课程的可授课教师列表中。",
		params: []ConstraintParam{
			{Name: "eligible_teacher_ids", Type: "array", Description: "课程可授课教师"},
		},
	},
	constraint.TypeSubjectSlotUnique: {
		category:    "冲突",
		description: "同一课程的各节次不能排在同一时间段。",
	},
	constraint.TypeMinCapacity: {
		category:    "资源",
		description: "教室容量不得低于课程要求的最低容量。",
		params: []ConstraintParam{
			{Name: "min_capacity", Type: "int", Description: "课程要求的最低教室容量", Default: "0", Min: "0"},
		},
	},
	constraint.TypePinnedTeacher: {
		category:    "资质",
		description: "同一课程的所有节次由同一位教师授课。",
		optional:    true,
		params: []ConstraintParam{
			{Name: "pin_teacher", Type: "bool", Description: "启用固定教师", Default: "false"},
		},
	},
}

// GetLibrary 按检查顺序返回全部内置约束，包括可选约束
func GetLibrary() []ConstraintDefinition {
	manager := builtin.NewDefaultManager(builtin.Config{PinTeacher: true})

	checks := manager.GetAll()
	library := make([]ConstraintDefinition, 0, len(checks))
	for _, c := range checks {
		e := descriptions[c.Type()]
		library = append(library, ConstraintDefinition{
			Name:        string(c.Type()),
			DisplayName: c.Name(),
			Type:        "hard",
			Category:    e.category,
			Order:       c.Order(),
			Optional:    e.optional,
			Description: e.description,
			Params:      e.params,
		})
	}
	return library
}
