package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/stats"
)

// ICS 常量
const (
	ICSProdID     = "-//kebiao//timetable//ZH"
	icsDateLayout = "20060102T150405"
	baseLayout    = "2006-01-02"

	// 第 p 节从 (8+p):00 到 (9+p):00
	firstPeriodHour = 8
)

// ICSExporter 将空闲时间段导出为日历
type ICSExporter struct{}

// NewICSExporter 创建 ICS 导出器
func NewICSExporter() *ICSExporter {
	return &ICSExporter{}
}

// Render 以 baseMonday (YYYY-MM-DD) 所在周为基准生成 ICS 内容和文件名
func (e *ICSExporter) Render(free []stats.FreeSlot, baseMonday string) (string, string, error) {
	base, err := time.Parse(baseLayout, baseMonday)
	if err != nil {
		return "", "", errors.InvalidInput("base_monday", "格式应为 YYYY-MM-DD")
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ICSProdID,
	}

	for i, slot := range free {
		if !slot.Day.Valid() {
			continue
		}
		date := base.AddDate(0, 0, slot.Day.Offset())
		start := date.Add(time.Duration(firstPeriodHour+slot.Period) * time.Hour)
		end := start.Add(time.Hour)

		dtStart := start.Format(icsDateLayout)
		lines = append(lines,
			"BEGIN:VEVENT",
			fmt.Sprintf("UID:%d-%s-%s@kebiao", i, dtStart, slot.ClassroomID),
			fmt.Sprintf("SUMMARY:[可借用] %s", slot.ClassroomID),
			"DTSTART:"+dtStart,
			"DTEND:"+end.Format(icsDateLayout),
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR")

	return strings.Join(lines, "\r\n"), fmt.Sprintf("free_slots_%s.ics", baseMonday), nil
}
