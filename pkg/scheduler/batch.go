package scheduler

import (
	"context"
	"sync"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// DefaultBatchWorkers 默认并发数
const DefaultBatchWorkers = 4

// BatchResult 批量排课中单个请求的结果
type BatchResult struct {
	Index     int              `json:"index"`
	Timetable *model.Timetable `json:"timetable,omitempty"`
	Err       error            `json:"-"`
}

// batchJob 批量任务
type batchJob struct {
	index int
	input *Input
}

// AssignBatch 并行处理多个互相独立的排课请求
// 每个请求使用自己的搜索状态；上下文结束后未开始的请求返回超时错误
func (e *Engine) AssignBatch(ctx context.Context, inputs []*Input, workers int) []BatchResult {
	if len(inputs) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	resultChan := make(chan BatchResult, len(inputs))
	jobChan := make(chan batchJob, len(inputs))

	// 启动工作协程
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if err := ctx.Err(); err != nil {
					resultChan <- BatchResult{Index: job.index, Err: errors.Timeout(0, err)}
					continue
				}
				tt, err := e.Assign(ctx, job.input)
				resultChan <- BatchResult{Index: job.index, Timetable: tt, Err: err}
			}
		}()
	}

	// 发送任务
	for i, in := range inputs {
		jobChan <- batchJob{index: i, input: in}
	}
	close(jobChan)

	// 等待完成
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// 收集结果
	results := make([]BatchResult, len(inputs))
	for result := range resultChan {
		results[result.Index] = result
	}

	return results
}
