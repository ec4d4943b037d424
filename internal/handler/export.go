package handler

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/export"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/stats"
)

// 导出格式
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
	FormatICS = "ics"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	ics      *export.ICSExporter
	maxBody  int64
	validate *validator.Validate
}

// NewExportHandler 创建导出处理器
func NewExportHandler(maxBody int64) *ExportHandler {
	return &ExportHandler{
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		ics:      export.NewICSExporter(),
		maxBody:  maxBody,
		validate: newValidate(),
	}
}

// ExportRequest 导出请求
// csv/pdf 导出课表；ics 导出空闲时间段，需要 classrooms、days、periods 和 base_monday
type ExportRequest struct {
	Title       string             `json:"title,omitempty"`
	Assignments []model.Assignment `json:"assignments" validate:"dive"`
	Classrooms  []model.Classroom  `json:"classrooms,omitempty"`
	Days        []model.Day        `json:"days,omitempty" validate:"omitempty,dive,min=1,max=7"`
	Periods     int                `json:"periods,omitempty" validate:"min=0,max=24"`
	BaseMonday  string             `json:"base_monday,omitempty"`
}

// Export 按路径中的格式导出
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	if format != FormatCSV && format != FormatPDF && format != FormatICS {
		respondError(w, errors.InvalidInput("format", "仅支持 csv、pdf、ics"))
		return
	}

	var req ExportRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	switch format {
	case FormatCSV:
		body, err := h.csv.Render(export.TimetableDataset(req.Assignments))
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "导出CSV失败"))
			return
		}
		writeFile(w, "text/csv; charset=utf-8", "timetable.csv", body)

	case FormatPDF:
		title := req.Title
		if title == "" {
			title = "Timetable"
		}
		body, err := h.pdf.Render(export.TimetableDataset(req.Assignments), title)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "导出PDF失败"))
			return
		}
		writeFile(w, "application/pdf", "timetable.pdf", body)

	case FormatICS:
		if len(req.Classrooms) == 0 || len(req.Days) == 0 || req.Periods <= 0 {
			respondError(w, errors.InvalidInput("classrooms/days/periods", "导出空闲时间段时必填"))
			return
		}
		free := stats.NewVacancyAnalyzer(model.NewGrid(req.Days, req.Periods)).FreeSlots(req.Classrooms, req.Assignments)
		content, filename, err := h.ics.Render(free, req.BaseMonday)
		if err != nil {
			respondError(w, err)
			return
		}
		writeFile(w, "text/calendar; charset=utf-8", filename, []byte(content))
	}
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
