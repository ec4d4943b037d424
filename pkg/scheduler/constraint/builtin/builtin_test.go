package builtin

import (
	"testing"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

var (
	mon1 = model.Timeslot{Day: model.Monday, Period: 1}
	mon2 = model.Timeslot{Day: model.Monday, Period: 2}
	mon3 = model.Timeslot{Day: model.Monday, Period: 3}
	tue1 = model.Timeslot{Day: model.Tuesday, Period: 1}
)

// testFixture 两位教师、两间教室、两门课程
type testFixture struct {
	ctx     *constraint.Context
	t1, t2  *model.Teacher
	r1, r2  *model.Classroom
	math    *model.Subject
	physics *model.Subject
}

func newTestFixture() *testFixture {
	f := &testFixture{
		t1: &model.Teacher{ID: "t1", Availability: []model.Timeslot{mon1, mon2, mon3}, DailyLimit: 2},
		t2: &model.Teacher{ID: "t2", Availability: []model.Timeslot{mon1, tue1}, DailyLimit: 1},
		r1: &model.Classroom{ID: "r1", Capacity: 30},
		r2: &model.Classroom{ID: "r2", Capacity: 60},
		math: &model.Subject{
			ID: "math", RequiredSlots: 2, EligibleTeacherIDs: []string{"t1", "t2"},
		},
		physics: &model.Subject{
			ID: "physics", RequiredSlots: 1, EligibleTeacherIDs: []string{"t1"}, MinCapacity: 50,
		},
	}
	f.ctx = constraint.NewContext(
		model.NewGrid([]model.Day{model.Monday, model.Tuesday}, 3),
		[]*model.Teacher{f.t1, f.t2},
		[]*model.Classroom{f.r1, f.r2},
		[]*model.Subject{f.math, f.physics},
	)
	return f
}

func (f *testFixture) place(subject *model.Subject, teacher *model.Teacher, room *model.Classroom, ts model.Timeslot) constraint.Placement {
	return constraint.Placement{Subject: subject, Teacher: teacher, Classroom: room, Slot: ts}
}

func TestChecks_Allow(t *testing.T) {
	tests := []struct {
		name     string
		check    constraint.Check
		existing []model.Assignment
		build    func(f *testFixture) constraint.Placement
		want     bool
	}{
		{
			name:  "可授课时间内，应通过",
			check: NewAvailabilityCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, mon1) },
			want:  true,
		},
		{
			name:  "不在可授课时间，应失败",
			check: NewAvailabilityCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, tue1) },
			want:  false,
		},
		{
			name:     "教师同时间段已有课，应失败",
			check:    NewTeacherDoubleBookingCheck(),
			existing: []model.Assignment{{SubjectID: "physics", TeacherID: "t1", ClassroomID: "r2", Day: model.Monday, Period: 1}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, mon1) },
			want:     false,
		},
		{
			name:     "教师其他时间段有课，应通过",
			check:    NewTeacherDoubleBookingCheck(),
			existing: []model.Assignment{{SubjectID: "physics", TeacherID: "t1", ClassroomID: "r2", Day: model.Monday, Period: 2}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, mon1) },
			want:     true,
		},
		{
			name:     "教室同时间段已占用，应失败",
			check:    NewClassroomDoubleBookingCheck(),
			existing: []model.Assignment{{SubjectID: "physics", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t2, f.r1, mon1) },
			want:     false,
		},
		{
			name:     "另一间教室，应通过",
			check:    NewClassroomDoubleBookingCheck(),
			existing: []model.Assignment{{SubjectID: "physics", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t2, f.r2, mon1) },
			want:     true,
		},
		{
			name:  "当天达到上限，应失败",
			check: NewDailyLimitCheck(),
			existing: []model.Assignment{
				{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1},
				{SubjectID: "physics", TeacherID: "t1", ClassroomID: "r2", Day: model.Monday, Period: 2},
			},
			build: func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, mon3) },
			want:  false,
		},
		{
			name:     "当天未达上限，应通过",
			check:    NewDailyLimitCheck(),
			existing: []model.Assignment{{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, mon2) },
			want:     true,
		},
		{
			name:     "其他天的课不计入当天，应通过",
			check:    NewDailyLimitCheck(),
			existing: []model.Assignment{{SubjectID: "math", TeacherID: "t2", ClassroomID: "r1", Day: model.Monday, Period: 1}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t2, f.r1, tue1) },
			want:     true,
		},
		{
			name:  "不在授课名单，应失败",
			check: NewEligibilityCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.physics, f.t2, f.r2, mon1) },
			want:  false,
		},
		{
			name:  "在授课名单，应通过",
			check: NewEligibilityCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.physics, f.t1, f.r2, mon1) },
			want:  true,
		},
		{
			name:     "同一课程同一时间段，应失败",
			check:    NewSubjectSlotUniqueCheck(),
			existing: []model.Assignment{{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t2, f.r2, mon1) },
			want:     false,
		},
		{
			name:  "教室容量不足，应失败",
			check: NewMinCapacityCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.physics, f.t1, f.r1, mon1) },
			want:  false,
		},
		{
			name:  "未声明容量要求，应通过",
			check: NewMinCapacityCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.math, f.t1, f.r1, mon1) },
			want:  true,
		},
		{
			name:     "更换教师，应失败",
			check:    NewPinnedTeacherCheck(),
			existing: []model.Assignment{{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 2}},
			build:    func(f *testFixture) constraint.Placement { return f.place(f.math, f.t2, f.r1, mon1) },
			want:     false,
		},
		{
			name:  "首节课任意教师，应通过",
			check: NewPinnedTeacherCheck(),
			build: func(f *testFixture) constraint.Placement { return f.place(f.math, f.t2, f.r1, mon1) },
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture()
			for _, a := range tt.existing {
				f.ctx.Push(a)
			}
			before := f.ctx.Len()

			got := tt.check.Allow(f.ctx, tt.build(f))

			if got != tt.want {
				t.Errorf("%s.Allow() = %v, want %v", tt.check.Type(), got, tt.want)
			}
			if f.ctx.Len() != before {
				t.Error("Allow 不应修改部分课表")
			}
		})
	}
}

func TestRegisterDefaultChecks_Order(t *testing.T) {
	m := NewDefaultManager(Config{})

	want := []constraint.Type{
		constraint.TypeAvailability,
		constraint.TypeTeacherDoubleBooking,
		constraint.TypeClassroomDoubleBooking,
		constraint.TypeDailyLimit,
		constraint.TypeEligibility,
		constraint.TypeSubjectSlotUnique,
		constraint.TypeMinCapacity,
	}
	checks := m.GetAll()
	if len(checks) != len(want) {
		t.Fatalf("Expected %d checks, got %d", len(want), len(checks))
	}
	for i, c := range checks {
		if c.Type() != want[i] {
			t.Errorf("check %d = %s, want %s", i, c.Type(), want[i])
		}
	}

	pinned := NewDefaultManager(Config{PinTeacher: true})
	if pinned.GetCheck(constraint.TypePinnedTeacher) == nil {
		t.Error("PinTeacher 应注册固定教师约束")
	}
}

func TestManager_ExplainReportsFirstFailure(t *testing.T) {
	f := newTestFixture()
	m := NewDefaultManager(Config{})

	// t2 在 Mon-2 不可授课，同时 physics 不允许 t2：应先报可授课时间
	ok, failed := m.Explain(f.ctx, f.physics, f.t2, f.r1, mon2)
	if ok || failed != constraint.TypeAvailability {
		t.Errorf("Explain = (%v, %s), want (false, availability)", ok, failed)
	}

	f.ctx.Push(model.Assignment{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1})
	ok, failed = m.Explain(f.ctx, f.physics, f.t1, f.r1, mon1)
	if ok || failed != constraint.TypeTeacherDoubleBooking {
		t.Errorf("Explain = (%v, %s), want (false, teacher_double_booking)", ok, failed)
	}

	if !m.CanPlace(f.ctx, f.physics, f.t1, f.r2, mon2) {
		t.Error("physics/t1/r2/Mon-2 应可行")
	}
}
