package handler

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/importer"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler"
)

// ImportResponse CSV 导入响应
type ImportResponse struct {
	Input     *scheduler.Input `json:"input"`
	Outcome   string           `json:"outcome,omitempty"`
	Persisted bool             `json:"persisted"`
	Timetable *model.Timetable `json:"timetable,omitempty"`
}

// Import 导入课程 CSV，assign=true 时直接排课
//
// 请求体为 text/csv 原文或 multipart 表单的 file 字段；
// 网格和教室由查询参数给出：days、periods、classrooms、daily_limit
func (h *TimetableHandler) Import(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := importOptions(q.Get("days"), q.Get("periods"), q.Get("classrooms"), q.Get("daily_limit"))
	if err != nil {
		respondError(w, err)
		return
	}

	body, err := h.csvBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	defer body.Close()

	in, err := importer.ParseCSV(body, opts)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			err = errors.New(errors.CodeInvalidInput, "请求体过大")
		}
		respondError(w, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Int("teachers", len(in.Teachers)).
		Int("subjects", len(in.Subjects)).
		Msg("课程CSV已导入")

	resp := ImportResponse{Input: in}
	if assign, _ := strconv.ParseBool(q.Get("assign")); assign {
		tt, err := h.engine.Assign(r.Context(), in)
		if err != nil {
			respondError(w, err)
			return
		}
		resp.Outcome = scheduler.Outcome(tt, nil)
		resp.Timetable = tt
		resp.Persisted = h.persist(r.Context(), tt)
	}
	respondJSON(w, http.StatusOK, resp)
}

// csvBody 取出 CSV 内容，multipart 时读 file 字段
func (h *TimetableHandler) csvBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	maxBody := h.maxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	if err := r.ParseMultipartForm(maxBody); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析上传表单失败").WithDetails(err.Error())
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.InvalidInput("file", "缺少上传文件")
	}
	return file, nil
}

// importOptions 解析查询参数，缺省为周一至周五每天 9 节
func importOptions(days, periods, classrooms, dailyLimit string) (importer.Options, error) {
	opts := importer.DefaultOptions()
	if strings.TrimSpace(days) != "" {
		parsed, err := importer.ParseDays(days)
		if err != nil {
			return opts, err
		}
		opts.Days = parsed
	}
	if periods != "" {
		n, err := strconv.Atoi(periods)
		if err != nil {
			return opts, errors.InvalidInput("periods", "必须为整数")
		}
		opts.Periods = n
	}
	if dailyLimit != "" {
		n, err := strconv.Atoi(dailyLimit)
		if err != nil || n < 1 {
			return opts, errors.InvalidInput("daily_limit", "必须为正整数")
		}
		opts.DailyLimit = n
	}
	rooms, err := importer.ParseClassrooms(classrooms)
	if err != nil {
		return opts, err
	}
	opts.Classrooms = rooms
	return opts, nil
}
