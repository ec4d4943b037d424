package stats

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// WorkloadMetrics 教师工作量公平性指标
type WorkloadMetrics struct {
	// 节数公平性
	WorkloadGini       float64 `json:"workload_gini"`        // 节数基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance   float64 `json:"workload_variance"`    // 节数方差
	WorkloadStdDev     float64 `json:"workload_std_dev"`     // 节数标准差
	AvgSlotsPerTeacher float64 `json:"avg_slots_per_teacher"` // 人均节数
	MaxSlots           float64 `json:"max_slots"`
	MinSlots           float64 `json:"min_slots"`
	SlotsRange         float64 `json:"slots_range"`

	// 每日分布
	SpreadGini float64 `json:"spread_gini"` // 授课天数基尼系数

	// 教师级别统计
	TeacherStats []TeacherStat `json:"teacher_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// TeacherStat 教师统计
type TeacherStat struct {
	TeacherID      string         `json:"teacher_id"`
	TeacherName    string         `json:"teacher_name"`
	Slots          int            `json:"slots"`
	DaysTaught     int            `json:"days_taught"`
	MaxPerDay      int            `json:"max_per_day"`
	DailyLimit     int            `json:"daily_limit"`
	Available      int            `json:"available"`
	Utilization    float64        `json:"utilization"` // 已排节数 / 可授课时间段 (%)
	PreferredSlots int            `json:"preferred_slots"`
	DailyLoad      map[string]int `json:"daily_load"`
	Deviation      float64        `json:"deviation"` // 与平均值的偏差百分比
}

// FairnessAnalyzer 工作量公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析教师工作量公平性，没有课的教师按 0 节计入
func (f *FairnessAnalyzer) Analyze(assignments []model.Assignment, teachers []model.Teacher) *WorkloadMetrics {
	if len(teachers) == 0 {
		return &WorkloadMetrics{OverallFairnessScore: 100}
	}

	teacherStats := f.calculateTeacherStats(assignments, teachers)

	slots := lo.Map(teacherStats, func(s TeacherStat, _ int) float64 { return float64(s.Slots) })
	days := lo.Map(teacherStats, func(s TeacherStat, _ int) float64 { return float64(s.DaysTaught) })

	// 计算基本统计量
	avg := f.calculateMean(slots)
	variance := f.calculateVariance(slots, avg)
	stdDev := math.Sqrt(variance)
	maxSlots, minSlots := f.calculateRange(slots)

	// 更新教师偏差
	for i := range teacherStats {
		if avg > 0 {
			teacherStats[i].Deviation = (float64(teacherStats[i].Slots) - avg) / avg * 100
		}
	}

	workloadGini := f.calculateGini(slots)
	spreadGini := f.calculateGini(days)

	return &WorkloadMetrics{
		WorkloadGini:         workloadGini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgSlotsPerTeacher:   avg,
		MaxSlots:             maxSlots,
		MinSlots:             minSlots,
		SlotsRange:           maxSlots - minSlots,
		SpreadGini:           spreadGini,
		TeacherStats:         teacherStats,
		OverallFairnessScore: f.calculateOverallScore(workloadGini, spreadGini, stdDev, avg),
	}
}

// calculateTeacherStats 计算教师统计数据，按节数降序，相同按ID升序
func (f *FairnessAnalyzer) calculateTeacherStats(assignments []model.Assignment, teachers []model.Teacher) []TeacherStat {
	byTeacher := lo.GroupBy(assignments, func(a model.Assignment) string { return a.TeacherID })

	result := make([]TeacherStat, 0, len(teachers))
	for _, t := range teachers {
		own := byTeacher[t.ID]
		daily := lo.CountValuesBy(own, func(a model.Assignment) model.Day { return a.Day })

		stat := TeacherStat{
			TeacherID:   t.ID,
			TeacherName: t.DisplayName(),
			Slots:       len(own),
			DaysTaught:  len(daily),
			DailyLimit:  t.DailyLimit,
			Available:   t.AvailableCount(),
			DailyLoad:   make(map[string]int, len(daily)),
			PreferredSlots: lo.CountBy(own, func(a model.Assignment) bool {
				return t.PrefersDay(a.Day)
			}),
		}
		for d, n := range daily {
			stat.DailyLoad[d.String()] = n
			stat.MaxPerDay = max(stat.MaxPerDay, n)
		}
		if stat.Available > 0 {
			stat.Utilization = float64(stat.Slots) / float64(stat.Available) * 100
		}
		result = append(result, stat)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Slots != result[j].Slots {
			return result[i].Slots > result[j].Slots
		}
		return result[i].TeacherID < result[j].TeacherID
	})

	return result
}

// calculateMean 计算平均值
func (f *FairnessAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// calculateVariance 计算方差
func (f *FairnessAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func (f *FairnessAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return lo.Max(values), lo.Min(values)
}

// calculateGini 计算基尼系数
func (f *FairnessAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := lo.Sum(sorted)
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(workloadGini, spreadGini, stdDev, avg float64) float64 {
	const (
		workloadWeight = 0.6
		spreadWeight   = 0.25
		stdDevWeight   = 0.15
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	workloadScore := (1 - workloadGini) * 100
	spreadScore := (1 - spreadGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore + spreadWeight*spreadScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// CompareTimetables 比较两个课表的公平性
func (f *FairnessAnalyzer) CompareTimetables(first, second []model.Assignment, teachers []model.Teacher) map[string]float64 {
	metrics1 := f.Analyze(first, teachers)
	metrics2 := f.Analyze(second, teachers)

	return map[string]float64{
		"workload_gini_diff":       metrics2.WorkloadGini - metrics1.WorkloadGini,
		"spread_gini_diff":         metrics2.SpreadGini - metrics1.SpreadGini,
		"overall_score_diff":       metrics2.OverallFairnessScore - metrics1.OverallFairnessScore,
		"timetable1_overall_score": metrics1.OverallFairnessScore,
		"timetable2_overall_score": metrics2.OverallFairnessScore,
	}
}
