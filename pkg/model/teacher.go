package model

import "github.com/samber/lo"

// Teacher 教师
type Teacher struct {
	ID            string     `json:"id" validate:"required"`
	Name          string     `json:"name,omitempty"`
	Availability  []Timeslot `json:"availability" validate:"required,min=1,dive"`
	DailyLimit    int        `json:"daily_limit" validate:"min=1"`
	PreferredDays []Day      `json:"preferred_days,omitempty" validate:"dive,min=1,max=7"`
}

// AvailabilitySet 返回可授课时间段集合
func (t *Teacher) AvailabilitySet() map[Timeslot]bool {
	set := make(map[Timeslot]bool, len(t.Availability))
	for _, ts := range t.Availability {
		set[ts] = true
	}
	return set
}

// AvailableCount 可授课时间段数量（重复项只计一次）
func (t *Teacher) AvailableCount() int {
	return len(lo.Uniq(t.Availability))
}

// IsAvailable 检查教师在该时间段是否可授课
func (t *Teacher) IsAvailable(ts Timeslot) bool {
	return lo.Contains(t.Availability, ts)
}

// PrefersDay 检查是否为偏好的授课日
func (t *Teacher) PrefersDay(d Day) bool {
	return lo.Contains(t.PreferredDays, d)
}

// DisplayName 返回显示名称
func (t *Teacher) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
