// Package planner 计算搜索顺序
package planner

import (
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// WorkItem 一门课程的候选集合
// Teachers、Classrooms、Timeslots 均已按搜索顺序排列
type WorkItem struct {
	Subject    *model.Subject
	Teachers   []*model.Teacher
	Classrooms []*model.Classroom
	Timeslots  []model.Timeslot
}

// Required 需要排的节数
func (w WorkItem) Required() int {
	return w.Subject.RequiredSlots
}

// TimeslotsFor 返回教师可授课的候选时间段
// 教师有偏好星期时，偏好星期的时间段排在前面，各组内仍按 (day, period) 升序
func (w WorkItem) TimeslotsFor(teacher *model.Teacher) []model.Timeslot {
	available := teacher.AvailabilitySet()
	slots := lo.Filter(w.Timeslots, func(ts model.Timeslot, _ int) bool {
		return available[ts]
	})
	if len(teacher.PreferredDays) == 0 {
		return slots
	}

	preferred, others := lo.FilterReject(slots, func(ts model.Timeslot, _ int) bool {
		return teacher.PrefersDay(ts.Day)
	})
	return append(preferred, others...)
}

// Plan 生成工作列表
//   - 课程按所需节数降序，相同时按ID升序
//   - 可授课教师按可授课时间段数升序
//   - 教室按容量升序，低于课程最低容量的教室被排除
//   - 时间段按 (day, period) 升序
func Plan(subjects []*model.Subject, teachers []*model.Teacher, classrooms []*model.Classroom, grid model.Grid) []WorkItem {
	teacherByID := lo.KeyBy(teachers, func(t *model.Teacher) string { return t.ID })

	orderedSubjects := make([]*model.Subject, len(subjects))
	copy(orderedSubjects, subjects)
	sort.SliceStable(orderedSubjects, func(i, j int) bool {
		a, b := orderedSubjects[i], orderedSubjects[j]
		if a.RequiredSlots != b.RequiredSlots {
			return a.RequiredSlots > b.RequiredSlots
		}
		return a.ID < b.ID
	})

	rooms := make([]*model.Classroom, len(classrooms))
	copy(rooms, classrooms)
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Capacity != rooms[j].Capacity {
			return rooms[i].Capacity < rooms[j].Capacity
		}
		return rooms[i].ID < rooms[j].ID
	})

	slots := grid.Slots()

	work := make([]WorkItem, 0, len(orderedSubjects))
	for _, s := range orderedSubjects {
		work = append(work, WorkItem{
			Subject:    s,
			Teachers:   eligibleTeachers(s, teacherByID),
			Classrooms: fittingClassrooms(s, rooms),
			Timeslots:  slots,
		})
	}
	return work
}

// eligibleTeachers 课程的可授课教师，可授课时间少的优先
func eligibleTeachers(s *model.Subject, teacherByID map[string]*model.Teacher) []*model.Teacher {
	result := lo.FilterMap(lo.Uniq(s.EligibleTeacherIDs), func(id string, _ int) (*model.Teacher, bool) {
		t, ok := teacherByID[id]
		return t, ok
	})
	sort.SliceStable(result, func(i, j int) bool {
		ci, cj := result[i].AvailableCount(), result[j].AvailableCount()
		if ci != cj {
			return ci < cj
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// fittingClassrooms 满足课程最低容量的教室，保持容量升序
func fittingClassrooms(s *model.Subject, rooms []*model.Classroom) []*model.Classroom {
	if !s.HasCapacityRequirement() {
		return rooms
	}
	return lo.Filter(rooms, func(r *model.Classroom, _ int) bool {
		return r.Fits(s.MinCapacity)
	})
}
