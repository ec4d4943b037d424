// Package model 定义课表引擎的核心数据模型
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Day 星期（周一=1 ... 周日=7）
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays 周一至周五
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// dayAliases 支持的星期写法
var dayAliases = map[string]Day{
	"mon": Monday, "monday": Monday, "周一": Monday, "星期一": Monday, "월": Monday,
	"tue": Tuesday, "tuesday": Tuesday, "周二": Tuesday, "星期二": Tuesday, "화": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday, "周三": Wednesday, "星期三": Wednesday, "수": Wednesday,
	"thu": Thursday, "thursday": Thursday, "周四": Thursday, "星期四": Thursday, "목": Thursday,
	"fri": Friday, "friday": Friday, "周五": Friday, "星期五": Friday, "금": Friday,
	"sat": Saturday, "saturday": Saturday, "周六": Saturday, "星期六": Saturday, "토": Saturday,
	"sun": Sunday, "sunday": Sunday, "周日": Sunday, "星期日": Sunday, "일": Sunday,
}

// ParseDay 解析星期
func ParseDay(s string) (Day, error) {
	if d, ok := dayAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("无效的星期: %q", s)
}

// Valid 检查星期是否合法
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String 返回星期缩写
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// UnmarshalJSON 同时接受数字和星期名称
func (d *Day) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if n, err := strconv.Atoi(raw); err == nil {
		*d = Day(n)
		return nil
	}
	unquoted, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("无效的星期: %s", raw)
	}
	parsed, err := ParseDay(unquoted)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Offset 距离周一的天数
func (d Day) Offset() int {
	return int(d - Monday)
}

// Timeslot 时间段（星期 + 节次）
type Timeslot struct {
	Day    Day `json:"day" validate:"min=1,max=7"`
	Period int `json:"period" validate:"min=1"`
}

// Less 按 (星期, 节次) 升序比较
func (t Timeslot) Less(other Timeslot) bool {
	if t.Day != other.Day {
		return t.Day < other.Day
	}
	return t.Period < other.Period
}

// String 返回可读格式，如 Mon-1
func (t Timeslot) String() string {
	return fmt.Sprintf("%s-%d", t.Day, t.Period)
}

// MaxPeriods 每天节次上限，与校验标签 max=24 保持一致
const MaxPeriods = 24

// Grid 时间段全集（星期集合 × 节次 1..Periods）
type Grid struct {
	Days    []Day `json:"days"`
	Periods int   `json:"periods"`
}

// NewGrid 创建时间网格，星期去重并升序
func NewGrid(days []Day, periods int) Grid {
	sorted := lo.Uniq(days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return Grid{Days: sorted, Periods: periods}
}

// Size 返回时间段总数
func (g Grid) Size() int {
	return len(g.Days) * g.Periods
}

// Slots 按 (星期, 节次) 升序枚举所有时间段
func (g Grid) Slots() []Timeslot {
	slots := make([]Timeslot, 0, g.Size())
	for _, d := range g.Days {
		for p := 1; p <= g.Periods; p++ {
			slots = append(slots, Timeslot{Day: d, Period: p})
		}
	}
	return slots
}

// Contains 检查时间段是否属于网格
func (g Grid) Contains(ts Timeslot) bool {
	return g.Index(ts) >= 0
}

// Index 返回时间段在网格中的规范位置，不存在时返回 -1
func (g Grid) Index(ts Timeslot) int {
	if ts.Period < 1 || ts.Period > g.Periods {
		return -1
	}
	for i, d := range g.Days {
		if d == ts.Day {
			return i*g.Periods + ts.Period - 1
		}
	}
	return -1
}
