// Package stats 提供课表统计分析功能
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// VacancyMetrics 教室空闲指标
type VacancyMetrics struct {
	// 整体
	TotalSlots      int     `json:"total_slots"`       // 教室 × 时间段总数
	UsedSlots       int     `json:"used_slots"`        // 已占用
	FreeSlots       int     `json:"free_slots"`        // 空闲
	OverallFreeRate float64 `json:"overall_free_rate"` // 整体空闲率 (%)

	// 按教室统计，顺序与输入一致
	Rooms []RoomVacancy `json:"rooms"`

	// 按星期统计
	DailyUsage map[string]DayUsage `json:"daily_usage"`
}

// RoomVacancy 单个教室的空闲情况
type RoomVacancy struct {
	ClassroomID string  `json:"room"`
	Name        string  `json:"name,omitempty"`
	Total       int     `json:"total"`
	Used        int     `json:"used"`
	Free        int     `json:"free"`
	FreeRate    float64 `json:"free_rate"`
}

// DayUsage 单日使用情况
type DayUsage struct {
	Day       string  `json:"day"`
	Total     int     `json:"total"`
	Used      int     `json:"used"`
	UsageRate float64 `json:"usage_rate"`
}

// FreeSlot 可借用的空闲时间段
type FreeSlot struct {
	Day         model.Day `json:"day"`
	Period      int       `json:"period"`
	ClassroomID string    `json:"room"`
}

// Timeslot 返回空闲时间段
func (f FreeSlot) Timeslot() model.Timeslot {
	return model.Timeslot{Day: f.Day, Period: f.Period}
}

// VacancyAnalyzer 教室空闲分析器
type VacancyAnalyzer struct {
	grid model.Grid
}

// NewVacancyAnalyzer 创建空闲分析器
func NewVacancyAnalyzer(grid model.Grid) *VacancyAnalyzer {
	return &VacancyAnalyzer{grid: grid}
}

// usedSet 网格内已占用的 (教室, 时间段)
func (v *VacancyAnalyzer) usedSet(assignments []model.Assignment) map[string]map[model.Timeslot]bool {
	used := make(map[string]map[model.Timeslot]bool)
	for _, a := range assignments {
		if !v.grid.Contains(a.Timeslot()) {
			continue
		}
		if used[a.ClassroomID] == nil {
			used[a.ClassroomID] = make(map[model.Timeslot]bool)
		}
		used[a.ClassroomID][a.Timeslot()] = true
	}
	return used
}

// Analyze 统计各教室空闲率
func (v *VacancyAnalyzer) Analyze(classrooms []model.Classroom, assignments []model.Assignment) *VacancyMetrics {
	perRoom := v.grid.Size()
	metrics := &VacancyMetrics{
		Rooms:      make([]RoomVacancy, 0, len(classrooms)),
		DailyUsage: make(map[string]DayUsage),
	}
	used := v.usedSet(assignments)

	for _, c := range classrooms {
		n := len(used[c.ID])
		metrics.Rooms = append(metrics.Rooms, RoomVacancy{
			ClassroomID: c.ID,
			Name:        c.Name,
			Total:       perRoom,
			Used:        n,
			Free:        perRoom - n,
			FreeRate:    rate(perRoom-n, perRoom),
		})
		metrics.TotalSlots += perRoom
		metrics.UsedSlots += n
	}
	metrics.FreeSlots = metrics.TotalSlots - metrics.UsedSlots
	metrics.OverallFreeRate = rate(metrics.FreeSlots, metrics.TotalSlots)

	for _, d := range v.grid.Days {
		total := v.grid.Periods * len(classrooms)
		n := lo.SumBy(classrooms, func(c model.Classroom) int {
			return lo.CountBy(lo.Keys(used[c.ID]), func(ts model.Timeslot) bool { return ts.Day == d })
		})
		metrics.DailyUsage[d.String()] = DayUsage{
			Day:       d.String(),
			Total:     total,
			Used:      n,
			UsageRate: rate(n, total),
		}
	}

	return metrics
}

// FreeSlots 列出所有空闲的 (星期, 教室, 节次)，按星期、教室、节次顺序
func (v *VacancyAnalyzer) FreeSlots(classrooms []model.Classroom, assignments []model.Assignment) []FreeSlot {
	used := v.usedSet(assignments)
	var free []FreeSlot

	for _, d := range v.grid.Days {
		for _, c := range classrooms {
			for p := 1; p <= v.grid.Periods; p++ {
				ts := model.Timeslot{Day: d, Period: p}
				if used[c.ID][ts] {
					continue
				}
				free = append(free, FreeSlot{Day: d, Period: p, ClassroomID: c.ID})
			}
		}
	}
	return free
}

// GenerateReport 生成文本报告
func (v *VacancyAnalyzer) GenerateReport(metrics *VacancyMetrics) string {
	var b strings.Builder

	b.WriteString("=== 教室空闲分析报告 ===\n\n")
	fmt.Fprintf(&b, "【整体】总计 %d，占用 %d，空闲 %d，空闲率 %.1f%%\n\n",
		metrics.TotalSlots, metrics.UsedSlots, metrics.FreeSlots, metrics.OverallFreeRate)

	if len(metrics.Rooms) > 0 {
		b.WriteString("【教室】\n")
		for _, r := range metrics.Rooms {
			fmt.Fprintf(&b, "  - %s: 占用 %d/%d，空闲率 %.1f%%\n", r.ClassroomID, r.Used, r.Total, r.FreeRate)
		}
		b.WriteString("\n")
	}

	days := lo.Keys(metrics.DailyUsage)
	sort.Slice(days, func(i, j int) bool {
		di, _ := model.ParseDay(days[i])
		dj, _ := model.ParseDay(days[j])
		return di < dj
	})
	if len(days) > 0 {
		b.WriteString("【按星期】\n")
		for _, d := range days {
			u := metrics.DailyUsage[d]
			fmt.Fprintf(&b, "  - %s: 使用率 %.1f%%\n", d, u.UsageRate)
		}
	}

	return b.String()
}

// rate 百分比，分母为 0 时返回 0
func rate(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
