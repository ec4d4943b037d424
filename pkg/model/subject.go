package model

import "github.com/samber/lo"

// Subject 课程
type Subject struct {
	ID                 string   `json:"id" validate:"required"`
	Name               string   `json:"name,omitempty"`
	RequiredSlots      int      `json:"required_slots" validate:"min=1"`
	EligibleTeacherIDs []string `json:"eligible_teacher_ids" validate:"required,min=1,dive,required"`
	MinCapacity        int      `json:"min_capacity,omitempty" validate:"min=0"`

	// AssignedTeacherID 由引擎在结果中填写，调用方输入时应为空
	AssignedTeacherID *string `json:"assigned_teacher_id,omitempty"`
}

// IsEligible 检查教师是否有资格授课
func (s *Subject) IsEligible(teacherID string) bool {
	return lo.Contains(s.EligibleTeacherIDs, teacherID)
}

// HasCapacityRequirement 是否声明了最低容量
func (s *Subject) HasCapacityRequirement() bool {
	return s.MinCapacity > 0
}

// DisplayName 返回显示名称
func (s *Subject) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
