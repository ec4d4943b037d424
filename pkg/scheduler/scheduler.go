// Package scheduler 课表引擎入口：校验输入、规划顺序、回溯搜索、定稿
package scheduler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
	"github.com/paiban/kebiao/pkg/scheduler/constraint/builtin"
	"github.com/paiban/kebiao/pkg/scheduler/planner"
	"github.com/paiban/kebiao/pkg/scheduler/solver"
	pkgvalidator "github.com/paiban/kebiao/pkg/validator"
)

// 排课结果分类
const (
	OutcomeSuccess      = "success"
	OutcomePartial      = "partial"
	OutcomeInfeasible   = "infeasible"
	OutcomeTimeout      = "timeout"
	OutcomeInvalidInput = "invalid_input"
	OutcomeIntegrity    = "integrity"
	OutcomeError        = "error"
)

// Observer 排课结果观察者
type Observer interface {
	ObserveAssign(outcome string, duration time.Duration, nodes int)
}

// Engine 课表引擎
// 不持有请求间共享的可变状态，可被多个协程同时使用
type Engine struct {
	opts     Options
	validate *validator.Validate
	observer Observer
	logger   *logger.SchedulerLogger
}

// NewEngine 创建引擎
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:     opts,
		validate: newValidate(),
		logger:   logger.NewSchedulerLogger(),
	}
}

// WithObserver 设置观察者
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Options 返回默认选项
func (e *Engine) Options() Options {
	return e.opts
}

// WithOptions 返回使用另一组默认选项的引擎副本
func (e *Engine) WithOptions(opts Options) *Engine {
	c := *e
	c.opts = opts
	return &c
}

// Validate 校验输入，问题全部列出
func (e *Engine) Validate(in *Input) error {
	return validateInput(e.validate, in)
}

// Assign 使用引擎默认选项生成课表
func (e *Engine) Assign(ctx context.Context, in *Input) (*model.Timetable, error) {
	return e.AssignWithOptions(ctx, in, e.opts)
}

// AssignWithOptions 生成课表
// 成功时返回完整课表；失败时只返回错误，不附带部分课表
func (e *Engine) AssignWithOptions(ctx context.Context, in *Input, opts Options) (tt *model.Timetable, err error) {
	startTime := time.Now()
	nodes := 0
	defer func() {
		if e.observer != nil {
			e.observer.ObserveAssign(Outcome(tt, err), time.Since(startTime), nodes)
		}
	}()

	if err := e.Validate(in); err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	grid := in.Grid()
	teachers, classrooms, subjects := in.clone()

	runID := uuid.NewString()
	e.logger.StartAssign(runID, len(subjects), len(teachers), len(classrooms), grid.Size())

	manager := builtin.NewDefaultManager(builtin.Config{PinTeacher: opts.PinTeacher})
	state := constraint.NewContext(grid, teachers, classrooms, subjects)
	state.RunID = runID
	work := planner.Plan(subjects, teachers, classrooms, grid)

	s := solver.NewBacktrackingSolver(manager, solver.Options{
		MaxNodes:   opts.MaxNodes,
		BestEffort: opts.BestEffort,
	})
	result, err := s.Solve(ctx, work, state)
	if err != nil {
		if n, ok := errors.GetField(err, "nodes"); ok {
			nodes, _ = n.(int)
		}
		return nil, err
	}
	nodes = result.Statistics.Nodes

	assignments, err := pkgvalidator.Finalize(result.Assignments)
	if err != nil {
		logger.WithError(err).Str("run_id", runID).Msg("课表完整性校验失败")
		return nil, err
	}

	tt = model.NewTimetable(assignments)
	tt.Unscheduled = result.Unscheduled
	tt.Statistics = result.Statistics
	tt.Subjects = reportSubjects(subjects, tt)

	e.logger.AssignComplete(runID, result.Duration, len(assignments), nodes)
	return tt, nil
}

// CanPlace 检查在已有分配的基础上能否放置一节课
// 返回第一个不满足的约束类型；引用不存在时返回输入错误
func (e *Engine) CanPlace(in *Input, partial []model.Assignment, candidate model.Assignment) (bool, constraint.Type, error) {
	if err := e.Validate(in); err != nil {
		return false, "", err
	}

	teachers, classrooms, subjects := in.clone()
	state := constraint.NewContext(in.Grid(), teachers, classrooms, subjects)
	manager := builtin.NewDefaultManager(builtin.Config{PinTeacher: e.opts.PinTeacher})

	verrs := &errors.ValidationErrors{}
	for _, a := range append(partial[:len(partial):len(partial)], candidate) {
		if state.GetSubject(a.SubjectID) == nil {
			verrs.Add("subject_id", "课程不存在: "+a.SubjectID)
		}
		if state.GetTeacher(a.TeacherID) == nil {
			verrs.Add("teacher_id", "教师不存在: "+a.TeacherID)
		}
		if state.GetClassroom(a.ClassroomID) == nil {
			verrs.Add("classroom_id", "教室不存在: "+a.ClassroomID)
		}
	}
	if verrs.HasErrors() {
		return false, "", verrs.AsInvalidInput()
	}

	for _, a := range partial {
		state.Push(a)
	}

	ok, failed := manager.Explain(state,
		state.GetSubject(candidate.SubjectID),
		state.GetTeacher(candidate.TeacherID),
		state.GetClassroom(candidate.ClassroomID),
		candidate.Timeslot(),
	)
	return ok, failed, nil
}

// Audit 按顺序重放外部提交的分配，列出所有违反约束的分配
func (e *Engine) Audit(in *Input, assignments []model.Assignment) ([]constraint.ViolationDetail, error) {
	if err := e.Validate(in); err != nil {
		return nil, err
	}

	teachers, classrooms, subjects := in.clone()
	state := constraint.NewContext(in.Grid(), teachers, classrooms, subjects)
	manager := builtin.NewDefaultManager(builtin.Config{PinTeacher: e.opts.PinTeacher})

	return manager.Replay(state, assignments), nil
}

// Outcome 结果分类，用于日志和指标
func Outcome(tt *model.Timetable, err error) string {
	if err == nil {
		if tt != nil && !tt.IsComplete() {
			return OutcomePartial
		}
		return OutcomeSuccess
	}
	switch errors.GetCode(err) {
	case errors.CodeNoFeasibleSolution:
		return OutcomeInfeasible
	case errors.CodeTimeout:
		return OutcomeTimeout
	case errors.CodeInvalidInput:
		return OutcomeInvalidInput
	case errors.CodeIntegrityViolation:
		return OutcomeIntegrity
	default:
		return OutcomeError
	}
}

// BlockedSubject 从无可行解错误中取出受阻课程和已排节数
// 受阻课程是按计划顺序第一个在任何搜索分支上都没能排满的课程
func BlockedSubject(err error) (string, int, bool) {
	if !errors.Is(err, errors.CodeNoFeasibleSolution) {
		return "", 0, false
	}
	subject, ok := errors.GetField(err, "subject_id")
	if !ok {
		return "", 0, false
	}
	placed, _ := errors.GetField(err, "placed")
	subjectID, _ := subject.(string)
	n, _ := placed.(int)
	return subjectID, n, true
}

// reportSubjects 返回课程副本，所有节次同一教师时填写 AssignedTeacherID
func reportSubjects(subjects []*model.Subject, tt *model.Timetable) []model.Subject {
	bySubject := lo.GroupBy(tt.Assignments, func(a model.Assignment) string { return a.SubjectID })

	return lo.Map(subjects, func(s *model.Subject, _ int) model.Subject {
		out := *s
		teacherIDs := lo.Uniq(lo.Map(bySubject[s.ID], func(a model.Assignment, _ int) string { return a.TeacherID }))
		if len(teacherIDs) == 1 {
			out.AssignedTeacherID = &teacherIDs[0]
		}
		return out
	})
}
