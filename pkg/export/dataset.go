// Package export 将课表和空闲时间段导出为 CSV、PDF、ICS
package export

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/stats"
)

// Dataset 表格数据
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// 表头
const (
	ColumnDay       = "day"
	ColumnPeriod    = "period"
	ColumnSubject   = "subject"
	ColumnTeacher   = "teacher"
	ColumnClassroom = "classroom"
)

// TimetableDataset 课表按分配顺序转换为表格
func TimetableDataset(assignments []model.Assignment) Dataset {
	return Dataset{
		Headers: []string{ColumnDay, ColumnPeriod, ColumnSubject, ColumnTeacher, ColumnClassroom},
		Rows: lo.Map(assignments, func(a model.Assignment, _ int) map[string]string {
			return map[string]string{
				ColumnDay:       a.Day.String(),
				ColumnPeriod:    strconv.Itoa(a.Period),
				ColumnSubject:   a.SubjectID,
				ColumnTeacher:   a.TeacherID,
				ColumnClassroom: a.ClassroomID,
			}
		}),
	}
}

// FreeSlotDataset 空闲时间段转换为表格
func FreeSlotDataset(free []stats.FreeSlot) Dataset {
	return Dataset{
		Headers: []string{ColumnDay, ColumnPeriod, ColumnClassroom},
		Rows: lo.Map(free, func(f stats.FreeSlot, _ int) map[string]string {
			return map[string]string{
				ColumnDay:       f.Day.String(),
				ColumnPeriod:    strconv.Itoa(f.Period),
				ColumnClassroom: f.ClassroomID,
			}
		}),
	}
}
