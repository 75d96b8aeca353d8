package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"assessment-service/internal/domain"
)

// EmployeeRepository — справочник сотрудников. Ведение карточек —
// забота внешней системы, ядру нужны только чтения.
type EmployeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository создаёт новый EmployeeRepository.
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID возвращает карточку сотрудника.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	var e domain.Employee

	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, department_id FROM employees WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.FullName, &e.DepartmentID)

	if err == sql.ErrNoRows {
		return domain.Employee{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Employee{}, fmt.Errorf("select employee: %w", err)
	}

	return e, nil
}

// CompetencyRepository — справочник компетенций.
type CompetencyRepository struct {
	db *sql.DB
}

// NewCompetencyRepository создаёт новый CompetencyRepository.
func NewCompetencyRepository(db *sql.DB) *CompetencyRepository {
	return &CompetencyRepository{db: db}
}

// GetByID возвращает компетенцию.
func (r *CompetencyRepository) GetByID(ctx context.Context, id string) (domain.Competency, error) {
	var c domain.Competency

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM competencies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name)

	if err == sql.ErrNoRows {
		return domain.Competency{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Competency{}, fmt.Errorf("select competency: %w", err)
	}

	return c, nil
}
