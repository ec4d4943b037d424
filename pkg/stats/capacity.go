package stats

import (
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// CapacityReport 教师供给与课程需求的匹配情况
// 只考虑授课资格和可授课时间，忽略每日上限和教室，因此 Matched < Required 说明一定无解，反之不保证有解
type CapacityReport struct {
	Required   int            `json:"required"`    // 总节数
	Matched    int            `json:"matched"`     // 最大匹配节数
	Supply     int            `json:"supply"`      // 教师可授课时间段总数
	RoomSupply int            `json:"room_supply"` // 教室 × 时间段
	Shortfall  map[string]int `json:"shortfall,omitempty"`
	Sufficient bool           `json:"sufficient"`
}

// lesson 课程的一节
type lesson struct {
	subject *model.Subject
}

// teacherSlot 教师的一个可授课时间段
type teacherSlot struct {
	teacherID string
	slot      model.Timeslot
}

// AnalyzeCapacity 用二分图最大匹配估计课程需求能否被教师时间覆盖
func AnalyzeCapacity(subjects []model.Subject, teachers []model.Teacher, classrooms []model.Classroom, grid model.Grid) (*CapacityReport, error) {
	var lessons []interface{}
	for i := range subjects {
		for k := 0; k < subjects[i].RequiredSlots; k++ {
			lessons = append(lessons, lesson{subject: &subjects[i]})
		}
	}

	var supply []interface{}
	for _, t := range teachers {
		for _, ts := range lo.Uniq(t.Availability) {
			if grid.Contains(ts) {
				supply = append(supply, teacherSlot{teacherID: t.ID, slot: ts})
			}
		}
	}

	report := &CapacityReport{
		Required:   len(lessons),
		Supply:     len(supply),
		RoomSupply: len(classrooms) * grid.Size(),
	}
	if len(lessons) == 0 {
		report.Sufficient = true
		return report, nil
	}

	neighbours := func(l, s interface{}) (bool, error) {
		return l.(lesson).subject.IsEligible(s.(teacherSlot).teacherID), nil
	}
	graph, err := bipartitegraph.NewBipartiteGraph(lessons, supply, neighbours)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()
	report.Matched = len(matching)

	matchedBySubject := make(map[string]int)
	for _, edge := range matching {
		matchedBySubject[lessons[edge.Node1].(lesson).subject.ID]++
	}
	for _, s := range subjects {
		if missing := s.RequiredSlots - matchedBySubject[s.ID]; missing > 0 {
			if report.Shortfall == nil {
				report.Shortfall = make(map[string]int)
			}
			report.Shortfall[s.ID] = missing
		}
	}

	report.Sufficient = report.Matched == report.Required && report.Required <= report.RoomSupply
	return report, nil
}
