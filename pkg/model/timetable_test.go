package model

import "testing"

func TestTeacher_Availability(t *testing.T) {
	teacher := &Teacher{
		ID:            "t1",
		Availability:  []Timeslot{{Monday, 1}, {Monday, 2}, {Monday, 1}},
		DailyLimit:    2,
		PreferredDays: []Day{Monday},
	}

	if teacher.AvailableCount() != 2 {
		t.Errorf("AvailableCount() = %d, expected 2", teacher.AvailableCount())
	}
	if !teacher.IsAvailable(Timeslot{Monday, 2}) {
		t.Error("Mon-2 应可用")
	}
	if teacher.IsAvailable(Timeslot{Tuesday, 1}) {
		t.Error("Tue-1 不应可用")
	}
	if len(teacher.AvailabilitySet()) != 2 {
		t.Error("AvailabilitySet 应去重")
	}
	if !teacher.PrefersDay(Monday) || teacher.PrefersDay(Friday) {
		t.Error("PrefersDay 结果不正确")
	}
	if teacher.DisplayName() != "t1" {
		t.Errorf("DisplayName() = %s", teacher.DisplayName())
	}
}

func TestSubject_IsEligible(t *testing.T) {
	s := &Subject{ID: "math", EligibleTeacherIDs: []string{"t1", "t2"}}

	if !s.IsEligible("t2") {
		t.Error("t2 应有资格")
	}
	if s.IsEligible("t3") {
		t.Error("t3 不应有资格")
	}
	if s.HasCapacityRequirement() {
		t.Error("未设置最低容量")
	}
}

func TestClassroom_Fits(t *testing.T) {
	c := &Classroom{ID: "r1", Capacity: 30}
	if !c.Fits(0) || !c.Fits(30) || c.Fits(31) {
		t.Error("Fits 结果不正确")
	}
}

func TestAssignment_Less(t *testing.T) {
	base := Assignment{SubjectID: "b", TeacherID: "t1", ClassroomID: "r1", Day: Monday, Period: 2}

	tests := []struct {
		name  string
		other Assignment
		want  bool
	}{
		{name: "星期更晚", other: Assignment{SubjectID: "a", Day: Tuesday, Period: 1}, want: true},
		{name: "节次更晚", other: Assignment{SubjectID: "a", Day: Monday, Period: 3}, want: true},
		{name: "同时间课程更大", other: Assignment{SubjectID: "c", Day: Monday, Period: 2}, want: true},
		{name: "同时间课程更小", other: Assignment{SubjectID: "a", Day: Monday, Period: 2}, want: false},
		{name: "完全相同", other: base, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Less(tt.other); got != tt.want {
				t.Errorf("Less() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestTimetable_Helpers(t *testing.T) {
	tt := NewTimetable([]Assignment{
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: Monday, Period: 1},
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: Monday, Period: 2},
		{SubjectID: "art", TeacherID: "t2", ClassroomID: "r2", Day: Monday, Period: 1},
	})

	if tt.Len() != 3 {
		t.Errorf("Len() = %d", tt.Len())
	}
	if tt.CountBySubject()["math"] != 2 {
		t.Error("math 应有2条分配")
	}
	if len(tt.ByTeacher()["t2"]) != 1 || len(tt.ByClassroom()["r1"]) != 2 {
		t.Error("分组结果不正确")
	}
	if id, ok := tt.TeacherOf("art"); !ok || id != "t2" {
		t.Errorf("TeacherOf(art) = %s, %v", id, ok)
	}
	if _, ok := tt.TeacherOf("music"); ok {
		t.Error("music 没有分配")
	}
	if !tt.IsComplete() {
		t.Error("没有未完成课程时应为完整")
	}
}
