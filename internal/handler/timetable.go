package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/paiban/kebiao/internal/constraints"
	"github.com/paiban/kebiao/internal/repository"
	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
	pkgvalidator "github.com/paiban/kebiao/pkg/validator"
)

// 批量请求上限
const maxBatchInputs = 64

// CheckRecorder 记录冲突检查拒绝
type CheckRecorder interface {
	RecordCheckRejection(check string)
}

// TimetableHandler 课表处理器
type TimetableHandler struct {
	engine   *scheduler.Engine
	store    repository.TimetableStore
	recorder CheckRecorder
	workers  int
	maxBody  int64
	validate *validator.Validate
}

// TimetableHandlerConfig 课表处理器配置
type TimetableHandlerConfig struct {
	Engine   *scheduler.Engine
	Store    repository.TimetableStore // 为 nil 时不持久化
	Recorder CheckRecorder
	Workers  int
	MaxBody  int64
}

// NewTimetableHandler 创建课表处理器
func NewTimetableHandler(cfg TimetableHandlerConfig) *TimetableHandler {
	engine := cfg.Engine
	if engine == nil {
		engine = scheduler.NewEngine(scheduler.DefaultOptions())
	}
	return &TimetableHandler{
		engine:   engine,
		store:    cfg.Store,
		recorder: cfg.Recorder,
		workers:  cfg.Workers,
		maxBody:  cfg.MaxBody,
		validate: newValidate(),
	}
}

// AssignRequest 排课请求
type AssignRequest struct {
	scheduler.Input
	Options map[string]interface{} `json:"options,omitempty"`
}

// AssignResponse 排课响应
type AssignResponse struct {
	Outcome   string           `json:"outcome"`
	Persisted bool             `json:"persisted"`
	Timetable *model.Timetable `json:"timetable"`
}

// Assign 生成课表
func (h *TimetableHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	opts, err := scheduler.DecodeOptions(req.Options, h.engine.Options())
	if err != nil {
		respondError(w, err)
		return
	}

	tt, err := h.engine.AssignWithOptions(r.Context(), &req.Input, opts)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AssignResponse{
		Outcome:   scheduler.Outcome(tt, nil),
		Persisted: h.persist(r.Context(), tt),
		Timetable: tt,
	})
}

// persist 保存课表，失败只记录日志
func (h *TimetableHandler) persist(ctx context.Context, tt *model.Timetable) bool {
	if h.store == nil {
		return false
	}
	if err := h.store.Save(ctx, tt); err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("timetable_id", tt.ID.String()).Msg("保存课表失败")
		return false
	}
	return true
}

// BatchRequest 批量排课请求
type BatchRequest struct {
	Inputs  []scheduler.Input      `json:"inputs" validate:"required,min=1,max=64"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// BatchItem 批量排课中单个结果
type BatchItem struct {
	Index     int                    `json:"index"`
	Outcome   string                 `json:"outcome"`
	Persisted bool                   `json:"persisted"`
	Timetable *model.Timetable       `json:"timetable,omitempty"`
	Error     map[string]interface{} `json:"error,omitempty"`
}

// BatchResponse 批量排课响应
type BatchResponse struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Results   []BatchItem `json:"results"`
}

// Batch 并行处理多个互相独立的排课请求
func (h *TimetableHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	opts, err := scheduler.DecodeOptions(req.Options, h.engine.Options())
	if err != nil {
		respondError(w, err)
		return
	}

	inputs := make([]*scheduler.Input, len(req.Inputs))
	for i := range req.Inputs {
		inputs[i] = &req.Inputs[i]
	}
	results := h.engine.WithOptions(opts).AssignBatch(r.Context(), inputs, h.workers)

	resp := BatchResponse{Total: len(results), Results: make([]BatchItem, len(results))}
	for i, res := range results {
		item := BatchItem{
			Index:     res.Index,
			Outcome:   scheduler.Outcome(res.Timetable, res.Err),
			Timetable: res.Timetable,
		}
		if res.Err != nil {
			item.Error = errorBody(res.Err)
		} else {
			resp.Succeeded++
			item.Persisted = h.persist(r.Context(), res.Timetable)
		}
		resp.Results[i] = item
	}
	respondJSON(w, http.StatusOK, resp)
}

// ValidateRequest 课表校验请求
type ValidateRequest struct {
	scheduler.Input
	Assignments []model.Assignment `json:"assignments" validate:"dive"`
}

// ValidateResponse 课表校验响应
type ValidateResponse struct {
	IsValid    bool                         `json:"is_valid"`
	Violations []constraint.ViolationDetail `json:"violations"`
	Conflicts  []pkgvalidator.Conflict      `json:"conflicts"`
}

// Validate 校验外部提交的课表
func (h *TimetableHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	violations, err := h.engine.Audit(&req.Input, req.Assignments)
	if err != nil {
		respondError(w, err)
		return
	}

	teachers := lo.SliceToMap(req.Teachers, func(t model.Teacher) (string, *model.Teacher) {
		return t.ID, &t
	})
	conflicts := pkgvalidator.NewConflictDetector(pkgvalidator.DefaultDetectorConfig()).DetectAll(req.Assignments, teachers)

	if violations == nil {
		violations = []constraint.ViolationDetail{}
	}
	if conflicts == nil {
		conflicts = []pkgvalidator.Conflict{}
	}
	respondJSON(w, http.StatusOK, ValidateResponse{
		IsValid:    len(violations) == 0 && len(conflicts) == 0,
		Violations: violations,
		Conflicts:  conflicts,
	})
}

// CheckRequest 单次放置检查请求
type CheckRequest struct {
	scheduler.Input
	Partial   []model.Assignment `json:"partial" validate:"dive"`
	Candidate model.Assignment   `json:"candidate"`
}

// CheckResponse 单次放置检查响应
type CheckResponse struct {
	Allowed     bool            `json:"allowed"`
	FailedCheck constraint.Type `json:"failed_check,omitempty"`
}

// Check 判断候选分配能否放入部分课表
func (h *TimetableHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := decodeJSON(w, r, h.maxBody, h.validate, &req); err != nil {
		respondError(w, err)
		return
	}

	ok, failed, err := h.engine.CanPlace(&req.Input, req.Partial, req.Candidate)
	if err != nil {
		respondError(w, err)
		return
	}
	if !ok && h.recorder != nil {
		h.recorder.RecordCheckRejection(string(failed))
	}
	respondJSON(w, http.StatusOK, CheckResponse{Allowed: ok, FailedCheck: failed})
}

// Get 获取已保存的课表
func (h *TimetableHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, errors.New(errors.CodeNotFound, "课表存储未启用"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errors.InvalidInput("id", "不是合法的UUID"))
		return
	}

	tt, err := h.store.Load(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tt)
}

// ListResponse 课表列表响应
type ListResponse struct {
	Total int                          `json:"total"`
	Items []repository.TimetableRecord `json:"items"`
}

// List 分页列出已保存的课表
func (h *TimetableHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, errors.New(errors.CodeNotFound, "课表存储未启用"))
		return
	}

	q := r.URL.Query()
	filter := repository.DefaultListFilter().WithStatus(q.Get("status"))
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, errors.InvalidInput("limit", "必须为整数"))
			return
		}
		filter = filter.WithLimit(n)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, errors.InvalidInput("offset", "必须为整数"))
			return
		}
		filter = filter.WithOffset(n)
	}
	filter.OrderDir = q.Get("order")

	items, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询课表失败"))
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{Total: total, Items: items})
}

// Delete 删除已保存的课表
func (h *TimetableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, errors.New(errors.CodeNotFound, "课表存储未启用"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, errors.InvalidInput("id", "不是合法的UUID"))
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Library 返回内置约束库
func (h *TimetableHandler) Library(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, constraints.LibraryResponse{Library: constraints.GetLibrary()})
}
