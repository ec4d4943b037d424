package handler

import (
	"net/http"
)

// Handlers 全部API处理器
type Handlers struct {
	Timetable *TimetableHandler
	Stats     *StatsHandler
	Export    *ExportHandler
}

// Register 注册 /api/v1 路由
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/timetable/assign", h.Timetable.Assign)
	mux.HandleFunc("POST /api/v1/timetable/batch", h.Timetable.Batch)
	mux.HandleFunc("POST /api/v1/timetable/validate", h.Timetable.Validate)
	mux.HandleFunc("POST /api/v1/timetable/check", h.Timetable.Check)
	mux.HandleFunc("POST /api/v1/timetable/import", h.Timetable.Import)
	mux.HandleFunc("GET /api/v1/timetables", h.Timetable.List)
	mux.HandleFunc("GET /api/v1/timetable/{id}", h.Timetable.Get)
	mux.HandleFunc("DELETE /api/v1/timetable/{id}", h.Timetable.Delete)
	mux.HandleFunc("GET /api/v1/constraints/library", h.Timetable.Library)

	mux.HandleFunc("POST /api/v1/stats/vacancy", h.Stats.Vacancy)
	mux.HandleFunc("POST /api/v1/stats/workload", h.Stats.Workload)
	mux.HandleFunc("POST /api/v1/stats/capacity", h.Stats.Capacity)

	mux.HandleFunc("POST /api/v1/export/{format}", h.Export.Export)

	mux.HandleFunc("GET /api/v1/", h.index)
}

// index API 根路由，列出端点
func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/" {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "课表引擎 API v1",
		"endpoints": map[string]interface{}{
			"timetable": map[string]string{
				"assign":   "POST /api/v1/timetable/assign",
				"batch":    "POST /api/v1/timetable/batch",
				"validate": "POST /api/v1/timetable/validate",
				"check":    "POST /api/v1/timetable/check",
				"import":   "POST /api/v1/timetable/import?classrooms=id:capacity,...",
				"list":     "GET /api/v1/timetables",
				"get":      "GET /api/v1/timetable/{id}",
				"delete":   "DELETE /api/v1/timetable/{id}",
			},
			"constraints": map[string]string{
				"library": "GET /api/v1/constraints/library",
			},
			"stats": map[string]string{
				"vacancy":  "POST /api/v1/stats/vacancy",
				"workload": "POST /api/v1/stats/workload",
				"capacity": "POST /api/v1/stats/capacity",
			},
			"export": map[string]string{
				"file": "POST /api/v1/export/{csv|pdf|ics}",
			},
		},
	})
}
