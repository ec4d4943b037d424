package solver

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
	"github.com/paiban/kebiao/pkg/scheduler/planner"
)

// ErrNodeLimit 超出节点上限
var ErrNodeLimit = stderrors.New("search node limit exceeded")

// BacktrackingSolver 深度优先回溯求解器
type BacktrackingSolver struct {
	manager    *constraint.Manager
	logger     *logger.SchedulerLogger
	maxNodes   int
	bestEffort bool
}

// NewBacktrackingSolver 创建回溯求解器
func NewBacktrackingSolver(cm *constraint.Manager, opts Options) *BacktrackingSolver {
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &BacktrackingSolver{
		manager:    cm,
		logger:     logger.NewSchedulerLogger(),
		maxNodes:   maxNodes,
		bestEffort: opts.BestEffort,
	}
}

// Name 返回求解器名称
func (s *BacktrackingSolver) Name() string {
	return "BacktrackingSolver"
}

// MaxNodes 返回节点上限
func (s *BacktrackingSolver) MaxNodes() int {
	return s.maxNodes
}

// Solve 回溯搜索
// 成功时 state 中保留完整课表；失败时 state 恢复为调用前的内容
// 无解时报告搜索到达过的最靠后的课程，即按工作列表顺序第一个在任何分支上都没能排满的课程
func (s *BacktrackingSolver) Solve(ctx context.Context, work []planner.WorkItem, state *constraint.Context) (*Result, error) {
	startTime := time.Now()
	result := &Result{}
	stats := &result.Statistics

	remaining := work
	for {
		sr := newSearch(ctx, s.manager, state, remaining, s.maxNodes-stats.Nodes)
		ok := sr.run()

		stats.Nodes += sr.nodes
		stats.Backtracks += sr.backtracks
		stats.MaxDepth = max(stats.MaxDepth, sr.maxDepth)

		if sr.err != nil {
			return nil, errors.Timeout(stats.Nodes, sr.err)
		}
		if ok {
			break
		}

		blocked := remaining[sr.deepest]
		s.logger.Infeasible(state.RunID, blocked.Subject.ID, sr.deepestPlaced, blocked.Required(), stats.Nodes)
		if !s.bestEffort {
			return nil, errors.Infeasible(blocked.Subject.ID, sr.deepestPlaced, blocked.Required()).
				WithField("nodes", stats.Nodes)
		}

		// 尽力模式：记录受阻课程，在其余课程上重新搜索
		result.Unscheduled = append(result.Unscheduled, model.Shortfall{
			SubjectID: blocked.Subject.ID,
			Required:  blocked.Required(),
		})
		remaining = append(remaining[:sr.deepest:sr.deepest], remaining[sr.deepest+1:]...)
	}

	result.Assignments = state.Assignments()
	result.Complete = len(result.Unscheduled) == 0
	result.Duration = time.Since(startTime)

	stats.Required = lo.SumBy(work, func(w planner.WorkItem) int { return w.Required() })
	stats.Placed = len(result.Assignments)
	stats.Duration = result.Duration
	return result, nil
}

// search 单次深度优先搜索
type search struct {
	ctx     context.Context
	manager *constraint.Manager
	state   *constraint.Context
	work    []planner.WorkItem
	slotIdx map[model.Timeslot]int
	budget  int

	nodes      int
	backtracks int
	maxDepth   int

	// 到达过的最靠后的课程，以及该课程最多排到的节数
	deepest       int
	deepestPlaced int

	err error
}

func newSearch(ctx context.Context, cm *constraint.Manager, state *constraint.Context, work []planner.WorkItem, budget int) *search {
	slots := state.Grid.Slots()
	slotIdx := make(map[model.Timeslot]int, len(slots))
	for i, ts := range slots {
		slotIdx[ts] = i
	}
	return &search{
		ctx:     ctx,
		manager: cm,
		state:   state,
		work:    work,
		slotIdx: slotIdx,
		budget:  budget,
	}
}

func (s *search) run() bool {
	if len(s.work) == 0 {
		return true
	}
	return s.assign(0, s.work[0].Required(), -1)
}

// assign 为 work[index] 放置剩余的 remaining 节
// 同一课程的各节按网格位置严格递增，lastSlot 为上一节的位置
func (s *search) assign(index, remaining, lastSlot int) bool {
	if index == len(s.work) {
		return true
	}
	item := s.work[index]
	if remaining == 0 {
		next := index + 1
		if next == len(s.work) {
			return true
		}
		return s.assign(next, s.work[next].Required(), -1)
	}

	s.reach(index, item.Required()-remaining)

	for _, teacher := range item.Teachers {
		slots := item.TimeslotsFor(teacher)
		for _, classroom := range item.Classrooms {
			for _, ts := range slots {
				pos, ok := s.slotIdx[ts]
				if !ok || pos <= lastSlot {
					continue
				}
				if !s.manager.CanPlace(s.state, item.Subject, teacher, classroom, ts) {
					continue
				}
				if !s.visit() {
					return false
				}

				s.state.Push(constraint.Placement{
					Subject: item.Subject, Teacher: teacher, Classroom: classroom, Slot: ts,
				}.Assignment())
				s.maxDepth = max(s.maxDepth, s.state.Len())

				if s.assign(index, remaining-1, pos) {
					return true
				}
				s.state.Pop()
				if s.err != nil {
					return false
				}
				s.backtracks++
			}
		}
	}
	return false
}

// visit 计数一个节点，超出上限或上下文结束时记录错误
func (s *search) visit() bool {
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.nodes >= s.budget {
		s.err = ErrNodeLimit
		return false
	}
	s.nodes++
	return true
}

// reach 记录搜索到达的位置
func (s *search) reach(index, placed int) {
	switch {
	case index > s.deepest:
		s.deepest, s.deepestPlaced = index, placed
	case index == s.deepest && placed > s.deepestPlaced:
		s.deepestPlaced = placed
	}
}
