package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Classrooms = []model.Classroom{{ID: "1215", Capacity: 40}, {ID: "1216", Capacity: 30}}
	return opts
}

func TestParseCSV_KoreanHeaders(t *testing.T) {
	data := "\ufeff교과목명,강좌담당교수,강의유형구분,선호요일\n" +
		"자료구조,홍길동,이론,\"월, 수\"\n" +
		"운영체제,홍길동,실습,금\n" +
		"네트워크,김철수,이론,\n"

	in, err := ParseCSV(strings.NewReader(data), testOptions())
	require.NoError(t, err)

	require.Len(t, in.Subjects, 3)
	assert.Equal(t, "S001", in.Subjects[0].ID)
	assert.Equal(t, "자료구조", in.Subjects[0].Name)
	assert.Equal(t, DefaultRequiredSlots, in.Subjects[0].RequiredSlots)
	assert.Equal(t, []string{"홍길동"}, in.Subjects[1].EligibleTeacherIDs)

	require.Len(t, in.Teachers, 2)
	hong := in.Teachers[0]
	assert.Equal(t, "홍길동", hong.ID)
	assert.Equal(t, []model.Day{model.Monday, model.Wednesday, model.Friday}, hong.PreferredDays)
	assert.Len(t, hong.Availability, 5*9)
	assert.Equal(t, 9, hong.DailyLimit)
	assert.Empty(t, in.Teachers[1].PreferredDays)

	assert.Equal(t, 9, in.Periods)
	assert.Equal(t, model.Weekdays, in.Days)
}

func TestParseCSV_EnglishHeaders(t *testing.T) {
	data := "id,name,teachers,required_slots,min_capacity\n" +
		"math,Math,t1;t2,2,35\n" +
		"\n" +
		"art,,t2,1,\n"

	opts := testOptions()
	opts.DailyLimit = 2
	in, err := ParseCSV(strings.NewReader(data), opts)
	require.NoError(t, err)

	require.Len(t, in.Subjects, 2)
	assert.Equal(t, model.Subject{
		ID: "math", Name: "Math", RequiredSlots: 2, MinCapacity: 35,
		EligibleTeacherIDs: []string{"t1", "t2"},
	}, in.Subjects[0])
	assert.Equal(t, "art", in.Subjects[1].Name)

	require.Len(t, in.Teachers, 2)
	assert.Equal(t, 2, in.Teachers[1].DailyLimit)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		modify func(*Options)
		field  string
	}{
		{"内容为空", "", nil, ""},
		{"缺少教师列", "name\nMath\n", nil, ""},
		{"缺少课程列", "teacher\nt1\n", nil, ""},
		{"节数非法", "name,teacher,slots\nMath,t1,zero\n", nil, "rows[1].required_slots"},
		{"教师为空", "name,teacher\nMath,\n", nil, "rows[1].teachers"},
		{"偏好星期非法", "name,teacher,preferred_days\nMath,t1,someday\n", nil, "rows[1].preferred_days"},
		{"节次超出上限", "name,teacher\nMath,t1\n", func(o *Options) { o.Periods = 1 << 50 }, "periods"},
		{"没有教室", "name,teacher\nMath,t1\n", func(o *Options) { o.Classrooms = nil }, "classrooms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			if tt.modify != nil {
				tt.modify(&opts)
			}
			in, err := ParseCSV(strings.NewReader(tt.data), opts)
			require.Error(t, err)
			assert.Nil(t, in)
			assert.True(t, errors.Is(err, errors.CodeInvalidInput))
			if tt.field != "" {
				_, ok := errors.GetField(err, tt.field)
				assert.True(t, ok, "缺少字段 %s: %v", tt.field, err)
			}
		})
	}
}

func TestParseCSV_RowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,teacher\n")
	for i := 0; i <= MaxRows; i++ {
		b.WriteString("Math,t1\n")
	}
	_, err := ParseCSV(strings.NewReader(b.String()), testOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInvalidInput))
}

func TestParseCSV_FeedsEngine(t *testing.T) {
	data := "name,teacher,slots\n" +
		"Math,t1,3\n" +
		"Art,t1,2\n"

	opts := testOptions()
	opts.Days = []model.Day{model.Monday}
	opts.Periods = 5
	in, err := ParseCSV(strings.NewReader(data), opts)
	require.NoError(t, err)

	tt, err := scheduler.NewEngine(scheduler.DefaultOptions()).Assign(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, tt.Assignments, 5)
}

func TestParseClassrooms(t *testing.T) {
	rooms, err := ParseClassrooms("1215:40, 1216:30,")
	require.NoError(t, err)
	assert.Equal(t, []model.Classroom{
		{ID: "1215", Name: "1215", Capacity: 40},
		{ID: "1216", Name: "1216", Capacity: 30},
	}, rooms)

	for _, bad := range []string{"1215", ":40", "1215:0", "1215:many"} {
		_, err := ParseClassrooms(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("mon,Wed 금")
	require.NoError(t, err)
	assert.Equal(t, []model.Day{model.Monday, model.Wednesday, model.Friday}, days)

	_, err = ParseDays("mon,xyz")
	assert.Error(t, err)
}
