package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"assessment-service/internal/domain"
)

// CycleRepository реализует domain.CycleRepository для PostgreSQL.
type CycleRepository struct {
	db *sql.DB
}

// NewCycleRepository создаёт новый CycleRepository.
func NewCycleRepository(db *sql.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// Create вставляет новый цикл.
func (r *CycleRepository) Create(ctx context.Context, c domain.AssessmentCycle) error {
	targets, err := json.Marshal(c.TargetEmployees)

	if err != nil {
		return fmt.Errorf("encode target_employees: %w", err)
	}

	types, err := json.Marshal(c.AssessmentTypes)

	if err != nil {
		return fmt.Errorf("encode assessment_types: %w", err)
	}

	if c.TargetEmployees == nil {
		targets = []byte(`[]`)
	}

	if c.AssessmentTypes == nil {
		types = []byte(`[]`)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO assessment_cycles
		   (id, name, status, start_date, end_date, target_employees, assessment_types, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, string(c.Status), c.StartDate, c.EndDate,
		targets, types, c.Description, c.CreatedAt, c.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	return nil
}

// GetByID возвращает цикл по идентификатору.
func (r *CycleRepository) GetByID(ctx context.Context, id string) (domain.AssessmentCycle, error) {
	var (
		c       domain.AssessmentCycle
		targets []byte
		types   []byte
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, status, start_date, end_date, target_employees, assessment_types, description, created_at, updated_at
		   FROM assessment_cycles
		  WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Status, &c.StartDate, &c.EndDate, &targets, &types, &c.Description, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return domain.AssessmentCycle{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.AssessmentCycle{}, fmt.Errorf("select cycle: %w", err)
	}

	if len(targets) > 0 {
		if err := json.Unmarshal(targets, &c.TargetEmployees); err != nil {
			return domain.AssessmentCycle{}, fmt.Errorf("decode target_employees: %w", err)
		}
	}

	if len(types) > 0 {
		if err := json.Unmarshal(types, &c.AssessmentTypes); err != nil {
			return domain.AssessmentCycle{}, fmt.Errorf("decode assessment_types: %w", err)
		}
	}

	return c, nil
}

// SetStatus выполняет условный переход статуса цикла from → to.
// Ноль затронутых строк при живой записи — проигранная гонка.
func (r *CycleRepository) SetStatus(ctx context.Context, id string, from, to domain.CycleStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assessment_cycles
		    SET status = $2,
		        updated_at = $3
		  WHERE id = $1 AND status = $4`,
		id, string(to), time.Now().UTC(), string(from),
	)

	if err != nil {
		return fmt.Errorf("set cycle status: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		var exists bool

		err = r.db.QueryRowContext(ctx, `SELECT TRUE FROM assessment_cycles WHERE id = $1`, id).Scan(&exists)

		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("check cycle exists: %w", err)
		}

		return domain.ErrStaleState
	}

	return nil
}

// AppendDescription дописывает заметку в описание цикла.
func (r *CycleRepository) AppendDescription(ctx context.Context, id, note string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assessment_cycles
		    SET description = CASE WHEN description = '' THEN $2 ELSE description || E'\n' || $2 END,
		        updated_at = $3
		  WHERE id = $1`,
		id, note, time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("append cycle description: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ExtendEndDate продлевает дедлайн активного цикла.
func (r *CycleRepository) ExtendEndDate(ctx context.Context, id string, newEnd time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assessment_cycles
		    SET end_date = $2,
		        updated_at = $3
		  WHERE id = $1 AND status = $4`,
		id, newEnd, time.Now().UTC(), string(domain.CycleStatusActive),
	)

	if err != nil {
		return fmt.Errorf("extend cycle end date: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		var exists bool

		err = r.db.QueryRowContext(ctx, `SELECT TRUE FROM assessment_cycles WHERE id = $1`, id).Scan(&exists)

		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("check cycle exists: %w", err)
		}

		return domain.ErrStaleState
	}

	return nil
}

// Delete удаляет цикл. Ссылающиеся оценки блокируют удаление на уровне FK.
func (r *CycleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM assessment_cycles WHERE id = $1`,
		id,
	)

	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return domain.ErrCycleHasAssessment
		}

		return fmt.Errorf("delete cycle: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
