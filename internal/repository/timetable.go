package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/paiban/kebiao/internal/database"
	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// 课表状态
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
)

// TimetableRecord 一次排课运行的记录
type TimetableRecord struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	Status           string         `json:"status" db:"status"`
	AssignmentCount  int            `json:"assignment_count" db:"assignment_count"`
	UnscheduledCount int            `json:"unscheduled_count" db:"unscheduled_count"`
	Unscheduled      types.JSONText `json:"unscheduled" db:"unscheduled"`
	Nodes            int            `json:"nodes" db:"nodes"`
	Backtracks       int            `json:"backtracks" db:"backtracks"`
	DurationMS       int64          `json:"duration_ms" db:"duration_ms"`
	GeneratedAt      time.Time      `json:"generated_at" db:"generated_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// NewTimetableRecord 从课表构建记录
func NewTimetableRecord(tt *model.Timetable) (*TimetableRecord, error) {
	status := StatusComplete
	if !tt.IsComplete() {
		status = StatusPartial
	}
	unscheduled := tt.Unscheduled
	if unscheduled == nil {
		unscheduled = []model.Shortfall{}
	}
	raw, err := json.Marshal(unscheduled)
	if err != nil {
		return nil, fmt.Errorf("序列化未排课程失败: %w", err)
	}
	return &TimetableRecord{
		ID:               tt.ID,
		Status:           status,
		AssignmentCount:  tt.Len(),
		UnscheduledCount: len(tt.Unscheduled),
		Unscheduled:      types.JSONText(raw),
		Nodes:            tt.Statistics.Nodes,
		Backtracks:       tt.Statistics.Backtracks,
		DurationMS:       tt.Statistics.Duration.Milliseconds(),
		GeneratedAt:      tt.GeneratedAt,
	}, nil
}

// TimetableStore 课表存储接口
type TimetableStore interface {
	Save(ctx context.Context, tt *model.Timetable) error
	GetByID(ctx context.Context, id uuid.UUID) (*TimetableRecord, error)
	Load(ctx context.Context, id uuid.UUID) (*model.Timetable, error)
	List(ctx context.Context, filter ListFilter) ([]TimetableRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimetableRepository 课表仓储实现
type TimetableRepository struct {
	db *database.DB
}

// NewTimetableRepository 创建课表仓储
func NewTimetableRepository(db *database.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = `id, status, assignment_count, unscheduled_count, unscheduled,
	nodes, backtracks, duration_ms, generated_at, created_at`

// Save 在一个事务中保存课表记录和全部分配
func (r *TimetableRepository) Save(ctx context.Context, tt *model.Timetable) error {
	record, err := NewTimetableRecord(tt)
	if err != nil {
		return err
	}
	record.CreatedAt = time.Now().UTC()

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		const insertTimetable = `
INSERT INTO timetables (id, status, assignment_count, unscheduled_count, unscheduled,
	nodes, backtracks, duration_ms, generated_at, created_at)
VALUES (:id, :status, :assignment_count, :unscheduled_count, :unscheduled,
	:nodes, :backtracks, :duration_ms, :generated_at, :created_at)`
		if _, err := sqlx.NamedExecContext(ctx, tx, insertTimetable, record); err != nil {
			return fmt.Errorf("创建课表记录失败: %w", err)
		}

		const insertAssignment = `
INSERT INTO timetable_assignments (timetable_id, subject_id, teacher_id, classroom_id, day, period)
VALUES ($1, $2, $3, $4, $5, $6)`
		for _, a := range tt.Assignments {
			if _, err := tx.ExecContext(ctx, insertAssignment,
				tt.ID, a.SubjectID, a.TeacherID, a.ClassroomID, int(a.Day), a.Period,
			); err != nil {
				return fmt.Errorf("创建课表分配失败: %w", err)
			}
		}
		return nil
	})
}

// GetByID 根据ID获取课表记录
func (r *TimetableRepository) GetByID(ctx context.Context, id uuid.UUID) (*TimetableRecord, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`

	var record TimetableRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("timetable", id.String())
		}
		return nil, fmt.Errorf("查询课表失败: %w", err)
	}
	return &record, nil
}

// ListAssignments 按 (星期, 节次, 课程) 顺序返回课表分配
func (r *TimetableRepository) ListAssignments(ctx context.Context, id uuid.UUID) ([]model.Assignment, error) {
	const query = `
SELECT subject_id, teacher_id, classroom_id, day, period
FROM timetable_assignments
WHERE timetable_id = $1
ORDER BY day, period, subject_id, teacher_id, classroom_id`

	assignments := make([]model.Assignment, 0)
	if err := r.db.SelectContext(ctx, &assignments, query, id); err != nil {
		return nil, fmt.Errorf("查询课表分配失败: %w", err)
	}
	return assignments, nil
}

// Load 还原完整课表
func (r *TimetableRepository) Load(ctx context.Context, id uuid.UUID) (*model.Timetable, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := r.ListAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	var unscheduled []model.Shortfall
	if len(record.Unscheduled) > 0 {
		if err := record.Unscheduled.Unmarshal(&unscheduled); err != nil {
			return nil, fmt.Errorf("解析未排课程失败: %w", err)
		}
	}
	if len(unscheduled) == 0 {
		unscheduled = nil
	}

	return &model.Timetable{
		ID:          record.ID,
		Assignments: assignments,
		Unscheduled: unscheduled,
		Statistics: model.SearchStats{
			Nodes:      record.Nodes,
			Backtracks: record.Backtracks,
			Placed:     record.AssignmentCount,
			Duration:   time.Duration(record.DurationMS) * time.Millisecond,
		},
		GeneratedAt: record.GeneratedAt,
	}, nil
}

// List 分页查询课表记录，返回记录和总数
func (r *TimetableRepository) List(ctx context.Context, filter ListFilter) ([]TimetableRecord, int, error) {
	filter = filter.normalize()

	where := ""
	args := []interface{}{}
	if filter.Status != "" {
		where = " WHERE status = $1"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM timetables`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("统计课表失败: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM timetables%s ORDER BY created_at %s LIMIT $%d OFFSET $%d`,
		timetableColumns, where, filter.OrderDir, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	records := make([]TimetableRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("查询课表列表失败: %w", err)
	}
	return records, total, nil
}

// Delete 删除课表及其分配
func (r *TimetableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_assignments WHERE timetable_id = $1`, id); err != nil {
			return fmt.Errorf("删除课表分配失败: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("删除课表失败: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("删除课表失败: %w", err)
		}
		if affected == 0 {
			return errors.NotFound("timetable", id.String())
		}
		return nil
	})
}
