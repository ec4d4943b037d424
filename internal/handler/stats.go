package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler"
	"github.com/paiban/kebiao/pkg/stats"
)

// StatsRecorder 统计结果指标
type StatsRecorder interface {
	SetFairnessGini(gini float64)
	SetRoomFreeRate(room string, rate float64)
}

// StatsHandler 统计处理器
type StatsHandler struct {
	engine   *scheduler.Engine
	recorder StatsRecorder
	maxBody  int64
	validate *validator.Validate
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(engine *scheduler.Engine, recorder StatsRecorder, maxBody int64) *StatsHandler {
	if engine == nil {
		engine = scheduler.NewEngine(scheduler.DefaultOptions())
	}
	return &StatsHandler{engine: engine, recorder: recorder, maxBody: maxBody, validate: newValidate()}
}

// VacancyRequest 空闲统计请求
type VacancyRequest struct {
	Classrooms  []model.Classroom  `json:"classrooms" validate:"required,min=1"`
	Days        []model.Day        `json:"days" validate:"required,min=1,dive,min=1,max=7"`
	Periods     int                `json:"periods" validate:"min=1,max=24"`
	Assignments []model.Assignment `json:"assignments" validate:"dive"`
}

// Grid 统计使用的时间网格
func (r *VacancyRequest) Grid() model.Grid {
	return model.NewGrid(r.Days, r.Periods)
}

// VacancyResponse 空闲统计响应
type VacancyResponse struct {
	Metrics   *stats.VacancyMetrics `json:"metrics"`
	FreeSlots []stats.FreeSlot      `json:"free_slots"`
	Report    string                `json:"report"`
}

// Vacancy 教室空闲统计
func (h *StatsHandler) Vacancy(w http.ResponseWriter, r *http.Request) {
	var req VacancyRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	analyzer := stats.NewVacancyAnalyzer(req.Grid())
	metrics := analyzer.Analyze(req.Classrooms, req.Assignments)
	free := analyzer.FreeSlots(req.Classrooms, req.Assignments)

	if h.recorder != nil {
		for _, room := range metrics.Rooms {
			h.recorder.SetRoomFreeRate(room.ClassroomID, room.FreeRate)
		}
	}

	logger.WithContext(r.Context()).Info().
		Int("classrooms", len(req.Classrooms)).
		Int("free_slots", len(free)).
		Msg("教室空闲统计")

	respondJSON(w, http.StatusOK, VacancyResponse{
		Metrics:   metrics,
		FreeSlots: free,
		Report:    analyzer.GenerateReport(metrics),
	})
}

// WorkloadRequest 工作量统计请求
type WorkloadRequest struct {
	Teachers    []model.Teacher    `json:"teachers" validate:"required,min=1"`
	Assignments []model.Assignment `json:"assignments" validate:"dive"`
	// Compare 可选的对比课表
	Compare []model.Assignment `json:"compare,omitempty" validate:"omitempty,dive"`
}

// WorkloadResponse 工作量统计响应
type WorkloadResponse struct {
	Metrics    *stats.WorkloadMetrics `json:"metrics"`
	Comparison map[string]float64     `json:"comparison,omitempty"`
}

// Workload 教师工作量统计
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	var req WorkloadRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	analyzer := stats.NewFairnessAnalyzer()
	resp := WorkloadResponse{Metrics: analyzer.Analyze(req.Assignments, req.Teachers)}
	if len(req.Compare) > 0 {
		resp.Comparison = analyzer.CompareTimetables(req.Assignments, req.Compare, req.Teachers)
	}

	if h.recorder != nil {
		h.recorder.SetFairnessGini(resp.Metrics.WorkloadGini)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Capacity 搜索前的容量检查
func (h *StatsHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	var in scheduler.Input
	if err := decodeJSON(w, r, h.maxBody, h.validate, &in); err != nil {
		respondError(w, err)
		return
	}
	if err := h.engine.Validate(&in); err != nil {
		respondError(w, err)
		return
	}

	report, err := stats.AnalyzeCapacity(in.Subjects, in.Teachers, in.Classrooms, in.Grid())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInternal, "容量分析失败"))
		return
	}
	respondJSON(w, http.StatusOK, report)
}
