// Package solver 提供排课求解器
package solver

import (
	"context"
	"time"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
	"github.com/paiban/kebiao/pkg/scheduler/planner"
)

// Solver 求解器接口
type Solver interface {
	// Solve 按工作列表在给定状态上生成课表
	Solve(ctx context.Context, work []planner.WorkItem, state *constraint.Context) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	Assignments []model.Assignment `json:"assignments"`
	Statistics  model.SearchStats  `json:"statistics"`
	Unscheduled []model.Shortfall  `json:"unscheduled,omitempty"`
	Duration    time.Duration      `json:"duration"`
	Complete    bool               `json:"complete"`
}

// DefaultMaxNodes 默认节点上限
const DefaultMaxNodes = 1_000_000

// Options 求解器选项
type Options struct {
	// MaxNodes 最多尝试的放置次数，<=0 使用默认值
	MaxNodes int
	// BestEffort 无可行解时跳过受阻课程继续排课
	BestEffort bool
}
