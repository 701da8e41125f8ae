package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alumnos-service/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	tableName = "alumnos"

	// SQLSTATE unique_violation
	pgUniqueViolation = "23505"
)

var mutableColumns = []string{"nombre", "apellido", "edad", "email", "carrera"}

type Repository interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int64) (*Student, error)
	Update(ctx context.Context, student *Student) (*Student, error)
	Delete(ctx context.Context, id int64) (*Student, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	start := time.Now()
	_, err := r.db.NewInsert().
		Model(student).
		ExcludeColumn("id", "created_at").
		Returning("*").
		Exec(ctx)

	r.record(ctx, "insert", start, err)

	if err != nil {
		return nil, translateError(err)
	}
	return student, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	start := time.Now()
	students := make([]Student, 0)
	err := r.db.NewSelect().
		Model(&students).
		OrderExpr("a.id ASC").
		Scan(ctx)

	r.record(ctx, "select", start, err)

	if err != nil {
		return nil, translateError(err)
	}
	return students, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("a.id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		r.record(ctx, "select", start, nil)
		return nil, ErrStudentNotFound
	}
	r.record(ctx, "select", start, err)

	if err != nil {
		return nil, translateError(err)
	}
	return student, nil
}

// Update overwrites the mutable columns of the row with student.ID and
// returns the stored row, including its unchanged created_at.
func (r *repository) Update(ctx context.Context, student *Student) (*Student, error) {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(student).
		Column(mutableColumns...).
		WherePK().
		Returning("*").
		Exec(ctx)

	r.record(ctx, "update", start, err)

	if err != nil {
		return nil, translateError(err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return student, nil
}

// Delete removes the row and returns it as it was just before deletion.
func (r *repository) Delete(ctx context.Context, id int64) (*Student, error) {
	start := time.Now()
	student := &Student{ID: id}
	result, err := r.db.NewDelete().
		Model(student).
		WherePK().
		Returning("*").
		Exec(ctx)

	r.record(ctx, "delete", start, err)

	if err != nil {
		return nil, translateError(err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return student, nil
}

func (r *repository) record(ctx context.Context, operation string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.Database.RecordQuery(ctx, operation, tableName, time.Since(start), err)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// translateError maps driver errors onto the package's error taxonomy.
func translateError(err error) error {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
		return ErrEmailExists
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
