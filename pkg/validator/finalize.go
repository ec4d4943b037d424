package validator

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// Finalize 对完整课表复核教师和教室冲突，并按 (星期, 节次, 课程) 排序
// 出现冲突说明搜索有缺陷，返回完整性错误；对已定稿课表重复调用结果不变
func Finalize(assignments []model.Assignment) ([]model.Assignment, error) {
	detector := NewConflictDetector(&DetectorConfig{})
	if conflicts := detector.DetectHard(assignments); len(conflicts) > 0 {
		messages := lo.Map(conflicts, func(c Conflict, _ int) string { return c.Message })
		return nil, errors.Integrity(strings.Join(messages, "; ")).
			WithField("conflicts", conflicts)
	}

	sorted := make([]model.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})
	return sorted, nil
}
