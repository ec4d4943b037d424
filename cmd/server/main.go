// 课表引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/paiban/kebiao/internal/config"
	"github.com/paiban/kebiao/internal/database"
	"github.com/paiban/kebiao/internal/handler"
	"github.com/paiban/kebiao/internal/metrics"
	"github.com/paiban/kebiao/internal/middleware"
	"github.com/paiban/kebiao/internal/repository"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/scheduler"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})

	fmt.Printf("kebiao 课表引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	m := metrics.New()

	engine := scheduler.NewEngine(scheduler.Options{
		MaxNodes:   cfg.Scheduler.MaxNodes,
		Timeout:    cfg.Scheduler.DefaultTimeout,
		PinTeacher: cfg.Scheduler.PinTeacher,
	}).WithObserver(m)

	// 可选的课表存储
	var (
		db    *database.DB
		store repository.TimetableStore
	)
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("连接数据库失败")
		}
		defer db.Close()
		store = repository.NewTimetableRepository(db)
	}

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		dbStatus := "disabled"
		if db != nil {
			dbStatus = "ok"
			if err := db.Health(r.Context()); err != nil {
				logger.WithContext(r.Context()).Warn().Err(err).Msg("数据库健康检查失败")
				status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "down"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q,"service":%q,"database":%q}`, status, cfg.App.Name, dbStatus)
	})

	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, m.Handler())
	}

	// ========================================
	// API v1 端点
	// ========================================

	handlers := &handler.Handlers{
		Timetable: handler.NewTimetableHandler(handler.TimetableHandlerConfig{
			Engine:   engine,
			Store:    store,
			Recorder: m,
			Workers:  cfg.Scheduler.BatchWorkers,
			MaxBody:  cfg.API.MaxBodySize,
		}),
		Stats:  handler.NewStatsHandler(engine, m, cfg.API.MaxBodySize),
		Export: handler.NewExportHandler(cfg.API.MaxBodySize),
	}
	handlers.Register(mux)

	// ========================================
	// 中间件
	// ========================================

	// 执行顺序：requestID -> recovery -> security -> cors -> rateLimit -> logging -> mux
	chain := []func(http.Handler) http.Handler{middleware.RequestID, middleware.Recovery, middleware.SecurityHeaders}
	if cfg.API.CORS.Enabled {
		chain = append(chain, middleware.CORS(cfg.API.CORS.Origins))
	}
	chain = append(chain,
		middleware.RateLimit(middleware.NewRateLimiter(float64(cfg.API.RateLimit))),
		middleware.Logging(m),
	)

	port := strconv.Itoa(cfg.App.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      middleware.Chain(mux, chain...),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Str("port", port).
			Str("env", cfg.App.Env).
			Str("version", Version).
			Bool("database", cfg.Database.Enabled).
			Str("api_docs", fmt.Sprintf("http://localhost:%s/api/v1/", port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		return
	}

	logger.Info().Msg("服务器已关闭")
}
