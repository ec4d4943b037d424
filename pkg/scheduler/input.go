package scheduler

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// Input 排课请求输入
type Input struct {
	Teachers   []model.Teacher   `json:"teachers" validate:"dive"`
	Classrooms []model.Classroom `json:"classrooms" validate:"dive"`
	Subjects   []model.Subject   `json:"subjects" validate:"dive"`
	Days       []model.Day       `json:"days" validate:"required,min=1,dive,min=1,max=7"`
	Periods    int               `json:"periods" validate:"min=1,max=24"`
}

// Grid 返回输入定义的时间网格
func (in *Input) Grid() model.Grid {
	return model.NewGrid(in.Days, in.Periods)
}

// clone 复制实体，引擎只读这些副本
func (in *Input) clone() ([]*model.Teacher, []*model.Classroom, []*model.Subject) {
	teachers := lo.Map(in.Teachers, func(t model.Teacher, _ int) *model.Teacher { return &t })
	classrooms := lo.Map(in.Classrooms, func(c model.Classroom, _ int) *model.Classroom { return &c })
	subjects := lo.Map(in.Subjects, func(s model.Subject, _ int) *model.Subject {
		s.AssignedTeacherID = nil
		return &s
	})
	return teachers, classrooms, subjects
}

// newValidate 创建结构校验器，字段名使用 json 标签
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput 结构校验 + 语义校验，收集全部问题
func validateInput(v *validator.Validate, in *Input) error {
	if in == nil {
		return errors.InvalidInput("input", "不能为空")
	}

	verrs := &errors.ValidationErrors{}

	if err := v.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return errors.Wrap(err, errors.CodeInvalidInput, "输入数据无效")
		}
		for _, fe := range fieldErrs {
			verrs.Add(fieldPath(fe.Namespace()), describeTag(fe))
		}
	}

	validateSemantics(in, verrs)

	if verrs.HasErrors() {
		return verrs.AsInvalidInput()
	}
	return nil
}

// validateSemantics 检查跨实体的一致性
func validateSemantics(in *Input, verrs *errors.ValidationErrors) {
	grid := in.Grid()

	teacherIDs := make(map[string]bool, len(in.Teachers))
	for i, t := range in.Teachers {
		if t.ID == "" {
			continue
		}
		if teacherIDs[t.ID] {
			verrs.Add(fmt.Sprintf("teachers[%d].id", i), fmt.Sprintf("教师ID重复: %s", t.ID))
		}
		teacherIDs[t.ID] = true
		for j, ts := range t.Availability {
			if !grid.Contains(ts) {
				verrs.Add(fmt.Sprintf("teachers[%d].availability[%d]", i, j), fmt.Sprintf("时间段 %s 不在网格内", ts))
			}
		}
	}

	classroomIDs := make(map[string]bool, len(in.Classrooms))
	for i, c := range in.Classrooms {
		if c.ID == "" {
			continue
		}
		if classroomIDs[c.ID] {
			verrs.Add(fmt.Sprintf("classrooms[%d].id", i), fmt.Sprintf("教室ID重复: %s", c.ID))
		}
		classroomIDs[c.ID] = true
	}

	subjectIDs := make(map[string]bool, len(in.Subjects))
	for i, s := range in.Subjects {
		if s.ID != "" {
			if subjectIDs[s.ID] {
				verrs.Add(fmt.Sprintf("subjects[%d].id", i), fmt.Sprintf("课程ID重复: %s", s.ID))
			}
			subjectIDs[s.ID] = true
		}
		for j, id := range s.EligibleTeacherIDs {
			if id != "" && !teacherIDs[id] {
				verrs.Add(fmt.Sprintf("subjects[%d].eligible_teacher_ids[%d]", i, j), fmt.Sprintf("教师不存在: %s", id))
			}
		}
	}

	if len(in.Subjects) > 0 && len(in.Classrooms) == 0 {
		verrs.Add("classrooms", "有课程时至少需要一间教室")
	}
}

// fieldPath 去掉顶层结构名，如 Input.teachers[0].id -> teachers[0].id
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// describeTag 校验规则的可读描述
func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填"
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "gt":
		return fmt.Sprintf("必须大于 %s", fe.Param())
	default:
		return fmt.Sprintf("不满足规则 %s", fe.Tag())
	}
}
