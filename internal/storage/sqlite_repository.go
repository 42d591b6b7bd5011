package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteTimeLayout = time.RFC3339Nano
	// zonedTimeLayout keeps the wall clock and offset, and stays readable by
	// sqlite's julianday() for ordering.
	zonedTimeLayout = time.RFC3339
)

var _ Repository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const taskColumns = `id, title, reminder_hour, reminder_minute, is_active, is_completed, last_completed_date, last_nudge_at, snoozed_until, created_at`

func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.ReminderHour, in.ReminderMinute, boolInt(in.IsActive), boolInt(in.IsCompleted),
		nullZoned(in.LastCompletedDate), nullTime(in.LastNudgeAt), nullTime(in.SnoozedUntil), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, reminder_hour = ?, reminder_minute = ?, is_active = ?, is_completed = ?, last_completed_date = ?, last_nudge_at = ?, snoozed_until = ?
		WHERE id = ?`,
		in.Title, in.ReminderHour, in.ReminderMinute, boolInt(in.IsActive), boolInt(in.IsCompleted),
		nullZoned(in.LastCompletedDate), nullTime(in.LastNudgeAt), nullTime(in.SnoozedUntil), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListTasks orders by reminder time of day, oldest first within a minute.
func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := make([]any, 0, 3)
	if filter.Active != nil {
		query += ` WHERE is_active = ?`
		args = append(args, boolInt(*filter.Active))
	}
	query += ` ORDER BY reminder_hour ASC, reminder_minute ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

const appointmentColumns = `id, title, visit_at, notes, created_at`

func (r *SQLiteRepository) CreateAppointment(ctx context.Context, in Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Title, zoned(in.VisitAt), in.Notes, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	item, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateAppointment(ctx context.Context, in Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET title = ?, visit_at = ?, notes = ?
		WHERE id = ?`,
		in.Title, zoned(in.VisitAt), in.Notes, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteAppointment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListAppointments(ctx context.Context, filter AppointmentListFilter) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	clauses := make([]string, 0, 1)
	args := make([]any, 0, 3)
	if filter.From != nil {
		clauses = append(clauses, "julianday(visit_at) >= julianday(?)")
		args = append(args, zoned(*filter.From))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY julianday(visit_at) ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Appointment, 0)
	for rows.Next() {
		item, scanErr := scanAppointment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func zoned(v time.Time) string {
	return v.Format(zonedTimeLayout)
}

func nullZoned(v *time.Time) any {
	if v == nil {
		return nil
	}
	return zoned(*v)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var active, completed int
	var lastCompleted sql.NullString
	var lastNudge, snoozed sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.ReminderHour, &out.ReminderMinute, &active, &completed, &lastCompleted, &lastNudge, &snoozed, &created); err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	// RFC3339 parses as a prefix of RFC3339Nano, so the shared helper reads
	// zoned values too.
	completedOn, err := parseNullableTime(lastCompleted)
	if err != nil {
		return Task{}, err
	}
	nudgedAt, err := parseNullableTime(lastNudge)
	if err != nil {
		return Task{}, err
	}
	snoozedUntil, err := parseNullableTime(snoozed)
	if err != nil {
		return Task{}, err
	}
	out.IsActive = active == 1
	out.IsCompleted = completed == 1
	out.LastCompletedDate = completedOn
	out.LastNudgeAt = nudgedAt
	out.SnoozedUntil = snoozedUntil
	out.CreatedAt = createdAt
	return out, nil
}

func scanAppointment(s scanner) (Appointment, error) {
	var out Appointment
	var visit string
	var created string
	if err := s.Scan(&out.ID, &out.Title, &visit, &out.Notes, &created); err != nil {
		return Appointment{}, err
	}
	visitAt, err := parseRequiredTime(visit)
	if err != nil {
		return Appointment{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Appointment{}, err
	}
	out.VisitAt = visitAt
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
