// Package importer 把课程 CSV 表格转换为排课输入
package importer

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler"
)

// MaxRows 单次导入的行数上限
const MaxRows = 5000

// DefaultRequiredSlots 未给出节数列时每门课的节数（一个三节连排块）
const DefaultRequiredSlots = 3

// 列名别名，表头大小写不敏感
var columnAliases = map[string][]string{
	"id":             {"id", "subject_id", "code", "课程编号", "과목코드"},
	"name":           {"name", "subject", "subject_name", "课程", "课程名", "교과목명"},
	"teachers":       {"teacher", "teachers", "teacher_ids", "教师", "강좌담당교수", "강좌대표교수"},
	"required_slots": {"required_slots", "slots", "节数", "시수"},
	"min_capacity":   {"min_capacity", "capacity", "人数", "수강인원"},
	"preferred_days": {"preferred_days", "偏好", "偏好星期", "선호요일"},
}

var (
	teacherSep = regexp.MustCompile(`[;/|]+`)
	daySep     = regexp.MustCompile(`[,\s/;]+`)
)

// Options 表格之外的排课参数
type Options struct {
	Days       []model.Day
	Periods    int
	Classrooms []model.Classroom
	// DailyLimit 教师每日上限，<=0 时取 Periods
	DailyLimit int
}

// DefaultOptions 周一至周五，每天 9 节
func DefaultOptions() Options {
	return Options{Days: model.Weekdays, Periods: 9}
}

// ParseCSV 读取课程表格：每行一门课，教师按出现顺序建立，
// 可授课时间为整个网格，偏好星期合并到教师
func ParseCSV(r io.Reader, opts Options) (*scheduler.Input, error) {
	verrs := &errors.ValidationErrors{}
	if opts.Periods < 1 || opts.Periods > model.MaxPeriods {
		verrs.Add("periods", fmt.Sprintf("必须在 1 到 %d 之间", model.MaxPeriods))
	}
	if len(opts.Days) == 0 {
		verrs.Add("days", "必填")
	}
	if len(opts.Classrooms) == 0 {
		verrs.Add("classrooms", "至少需要一间教室")
	}
	if verrs.HasErrors() {
		return nil, verrs.AsInvalidInput()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.InvalidInput("csv", "内容为空")
		}
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "读取CSV表头失败").WithDetails(err.Error())
	}
	cols := mapColumns(header)
	if _, ok := cols["name"]; !ok {
		if _, ok := cols["id"]; !ok {
			return nil, errors.InvalidInput("csv", "缺少课程列 (name 或 id)")
		}
	}
	if _, ok := cols["teachers"]; !ok {
		return nil, errors.InvalidInput("csv", "缺少教师列 (teacher)")
	}

	dailyLimit := opts.DailyLimit
	if dailyLimit <= 0 {
		dailyLimit = opts.Periods
	}
	availability := model.NewGrid(opts.Days, opts.Periods).Slots()

	in := &scheduler.Input{
		Classrooms: opts.Classrooms,
		Days:       opts.Days,
		Periods:    opts.Periods,
	}
	teacherIndex := make(map[string]int)

	for row := 1; ; row++ {
		record, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "读取CSV失败").WithDetails(err.Error())
		}
		if row > MaxRows {
			return nil, errors.InvalidInput("csv", fmt.Sprintf("行数超过上限 %d", MaxRows))
		}
		if lo.EveryBy(record, func(f string) bool { return strings.TrimSpace(f) == "" }) {
			continue
		}

		field := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		at := func(key string) string { return fmt.Sprintf("rows[%d].%s", row, key) }

		subject := model.Subject{ID: field("id"), Name: field("name"), RequiredSlots: DefaultRequiredSlots}
		if subject.ID == "" {
			subject.ID = fmt.Sprintf("S%03d", row)
		}
		if subject.Name == "" {
			subject.Name = subject.ID
		}

		if v := field("required_slots"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				verrs.Add(at("required_slots"), "必须为正整数")
			}
			subject.RequiredSlots = n
		}
		if v := field("min_capacity"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				verrs.Add(at("min_capacity"), "必须为非负整数")
			}
			subject.MinCapacity = n
		}

		var preferred []model.Day
		for _, tok := range daySep.Split(field("preferred_days"), -1) {
			if tok == "" {
				continue
			}
			d, err := model.ParseDay(tok)
			if err != nil {
				verrs.Add(at("preferred_days"), err.Error())
				continue
			}
			preferred = append(preferred, d)
		}

		names := lo.Uniq(lo.Filter(
			lo.Map(teacherSep.Split(field("teachers"), -1), func(s string, _ int) string { return strings.TrimSpace(s) }),
			func(s string, _ int) bool { return s != "" },
		))
		if len(names) == 0 {
			verrs.Add(at("teachers"), "必填")
		}
		for _, name := range names {
			i, ok := teacherIndex[name]
			if !ok {
				i = len(in.Teachers)
				teacherIndex[name] = i
				in.Teachers = append(in.Teachers, model.Teacher{
					ID:           name,
					Name:         name,
					Availability: availability,
					DailyLimit:   dailyLimit,
				})
			}
			t := &in.Teachers[i]
			t.PreferredDays = lo.Uniq(append(t.PreferredDays, preferred...))
		}
		subject.EligibleTeacherIDs = names

		in.Subjects = append(in.Subjects, subject)
	}

	if verrs.HasErrors() {
		return nil, verrs.AsInvalidInput()
	}
	return in, nil
}

// ParseClassrooms 解析 "id:capacity" 列表，如 1215:40,1216:30
func ParseClassrooms(spec string) ([]model.Classroom, error) {
	var out []model.Classroom
	for i, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, capText, ok := strings.Cut(item, ":")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("classrooms[%d]", i), "格式应为 id:capacity")
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(capText))
		if err != nil || capacity <= 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("classrooms[%d].capacity", i), "必须为正整数")
		}
		out = append(out, model.Classroom{ID: id, Name: id, Capacity: capacity})
	}
	return out, nil
}

// ParseDays 解析逗号分隔的星期列表
func ParseDays(spec string) ([]model.Day, error) {
	var out []model.Day
	for _, tok := range daySep.Split(spec, -1) {
		if tok == "" {
			continue
		}
		d, err := model.ParseDay(tok)
		if err != nil {
			return nil, errors.InvalidInput("days", err.Error())
		}
		out = append(out, d)
	}
	return out, nil
}

// mapColumns 表头 -> 列下标，未识别的列忽略
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for key, aliases := range columnAliases {
			if _, seen := cols[key]; seen {
				continue
			}
			if lo.Contains(aliases, h) {
				cols[key] = i
			}
		}
	}
	return cols
}
