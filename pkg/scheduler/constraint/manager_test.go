package constraint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
)

// MockCheck 测试用约束
type MockCheck struct {
	name  string
	typ   Type
	order int
	pass  bool
	calls *int
}

func (m *MockCheck) Name() string { return m.name }
func (m *MockCheck) Type() Type   { return m.typ }
func (m *MockCheck) Order() int   { return m.order }
func (m *MockCheck) Allow(ctx *Context, p Placement) bool {
	if m.calls != nil {
		*m.calls++
	}
	return m.pass
}

func TestManager_RegisterOrder(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockCheck{name: "third", typ: "c", order: 30, pass: true})
	manager.Register(&MockCheck{name: "first", typ: "a", order: 10, pass: true})
	manager.Register(&MockCheck{name: "second", typ: "b", order: 20, pass: true})

	checks := manager.GetAll()
	if len(checks) != 3 {
		t.Fatalf("Expected 3 checks, got %d", len(checks))
	}
	for i, want := range []string{"first", "second", "third"} {
		if checks[i].Name() != want {
			t.Errorf("check %d = %s, expected %s", i, checks[i].Name(), want)
		}
	}

	// 同类型替换
	manager.Register(&MockCheck{name: "first-v2", typ: "a", order: 10, pass: true})
	if manager.Count() != 3 {
		t.Errorf("同类型应替换, got %d", manager.Count())
	}
	if manager.GetCheck("a").Name() != "first-v2" {
		t.Error("替换失败")
	}

	manager.Unregister("b")
	if manager.GetCheck("b") != nil || manager.Count() != 2 {
		t.Error("注销失败")
	}

	manager.Clear()
	if manager.Count() != 0 {
		t.Error("Clear 失败")
	}
}

func TestManager_ExplainShortCircuit(t *testing.T) {
	manager := NewManager()
	var laterCalls int
	manager.Register(&MockCheck{name: "pass", typ: "pass", order: 1, pass: true})
	manager.Register(&MockCheck{name: "fail", typ: "fail", order: 2, pass: false})
	manager.Register(&MockCheck{name: "later", typ: "later", order: 3, pass: true, calls: &laterCalls})

	ctx, subject, teacher, room := newFixture()
	ok, failed := manager.Explain(ctx, subject, teacher, room, model.Timeslot{Day: model.Monday, Period: 1})

	if ok {
		t.Error("应返回不可行")
	}
	if failed != "fail" {
		t.Errorf("failed = %s, expected fail", failed)
	}
	if laterCalls != 0 {
		t.Error("第一个失败后不应继续检查")
	}
	if manager.CanPlace(ctx, subject, teacher, room, model.Timeslot{Day: model.Monday, Period: 1}) {
		t.Error("CanPlace 应与 Explain 一致")
	}
}

func TestManager_Replay(t *testing.T) {
	manager := NewManager()
	manager.Register(&teacherBusyCheck{})

	ctx, _, _, _ := newFixture()
	violations := manager.Replay(ctx, []model.Assignment{
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1},
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1},
		{SubjectID: "math", TeacherID: "ghost", ClassroomID: "r1", Day: model.Monday, Period: 2},
	})

	if len(violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d", len(violations))
	}
	if violations[0].ConstraintType != "busy" {
		t.Errorf("violation 0 type = %s", violations[0].ConstraintType)
	}
	if violations[1].ConstraintType != TypeUnknownReference {
		t.Errorf("violation 1 type = %s", violations[1].ConstraintType)
	}
	if ctx.Len() != 2 {
		t.Errorf("合法引用的分配都应加入状态, got %d", ctx.Len())
	}
}

func TestManager_ReplayLogsOneSummary(t *testing.T) {
	var buf bytes.Buffer
	manager := NewManager()
	manager.logger = logger.NewSchedulerLoggerFrom(zerolog.New(&buf))
	manager.Register(&teacherBusyCheck{})

	ctx, _, _, _ := newFixture()
	manager.Replay(ctx, []model.Assignment{
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1},
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1},
		{SubjectID: "math", TeacherID: "t1", ClassroomID: "r1", Day: model.Monday, Period: 1},
		{SubjectID: "math", TeacherID: "ghost", ClassroomID: "r1", Day: model.Monday, Period: 2},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Replay 应只输出一条汇总日志, got %d: %s", len(lines), buf.String())
	}
	for _, want := range []string{`"violations":3`, `"busy":2`, `"unknown_reference":1`, `"assignments":4`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("汇总日志缺少 %s: %s", want, lines[0])
		}
	}
}

func TestManager_Summary(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockCheck{name: "a", typ: "a", order: 1, pass: true})

	summary := manager.Summary()
	if summary["total"] != 1 {
		t.Errorf("total = %v", summary["total"])
	}
}

// teacherBusyCheck 测试用：教师同时间段只能一节
type teacherBusyCheck struct{}

func (teacherBusyCheck) Name() string { return "busy" }
func (teacherBusyCheck) Type() Type   { return "busy" }
func (teacherBusyCheck) Order() int   { return 1 }
func (teacherBusyCheck) Allow(ctx *Context, p Placement) bool {
	return !ctx.IsTeacherBusy(p.Teacher.ID, p.Slot)
}

func newFixture() (*Context, *model.Subject, *model.Teacher, *model.Classroom) {
	teacher := &model.Teacher{
		ID:           "t1",
		Availability: []model.Timeslot{{Day: model.Monday, Period: 1}, {Day: model.Monday, Period: 2}},
		DailyLimit:   2,
	}
	room := &model.Classroom{ID: "r1", Capacity: 30}
	subject := &model.Subject{ID: "math", RequiredSlots: 2, EligibleTeacherIDs: []string{"t1"}}
	ctx := NewContext(
		model.NewGrid([]model.Day{model.Monday}, 2),
		[]*model.Teacher{teacher},
		[]*model.Classroom{room},
		[]*model.Subject{subject},
	)
	return ctx, subject, teacher, room
}
