package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"assessment-service/internal/domain"
)

// AssessmentRepository реализует domain.AssessmentRepository для PostgreSQL.
type AssessmentRepository struct {
	db *sql.DB
}

// NewAssessmentRepository создаёт новый AssessmentRepository.
func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, employee_id, competency_id, assessor_id, cycle_id,
	assessment_type, rating, comments, development_notes, status,
	submitted_at, extended_deadline, evidence_files, created_at, updated_at`

func scanAssessment(row interface{ Scan(...any) error }) (domain.Assessment, error) {
	var (
		a        domain.Assessment
		evidence []byte
	)

	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.CompetencyID, &a.AssessorID, &a.CycleID,
		&a.Type, &a.Rating, &a.Comments, &a.DevelopmentNotes, &a.Status,
		&a.SubmittedAt, &a.ExtendedDeadline, &evidence, &a.CreatedAt, &a.UpdatedAt,
	)

	if err != nil {
		return domain.Assessment{}, err
	}

	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &a.EvidenceFiles); err != nil {
			return domain.Assessment{}, fmt.Errorf("decode evidence_files: %w", err)
		}
	}

	return a, nil
}

// Create вставляет новую оценку. Нарушение уникального индекса комбинации
// возвращается как domain.ErrDuplicate.
func (r *AssessmentRepository) Create(ctx context.Context, a domain.Assessment) error {
	evidence, err := json.Marshal(a.EvidenceFiles)

	if err != nil {
		return fmt.Errorf("encode evidence_files: %w", err)
	}

	if a.EvidenceFiles == nil {
		evidence = []byte(`[]`)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO assessments (`+assessmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.EmployeeID, a.CompetencyID, a.AssessorID, a.CycleID,
		string(a.Type), a.Rating, a.Comments, a.DevelopmentNotes, string(a.Status),
		a.SubmittedAt, a.ExtendedDeadline, evidence, a.CreatedAt, a.UpdatedAt,
	)

	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.ErrDuplicate
		}

		return fmt.Errorf("insert assessment: %w", err)
	}

	return nil
}

// GetByID возвращает оценку по идентификатору.
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (domain.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`,
		id,
	)

	a, err := scanAssessment(row)

	if err == sql.ErrNoRows {
		return domain.Assessment{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Assessment{}, fmt.Errorf("select assessment: %w", err)
	}

	return a, nil
}

// FindByTuple ищет оценку по уникальной комбинации
// (сотрудник, компетенция, оценщик, цикл).
func (r *AssessmentRepository) FindByTuple(ctx context.Context, employeeID, competencyID, assessorID string, cycleID *string) (domain.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+`
		   FROM assessments
		  WHERE employee_id = $1
		    AND competency_id = $2
		    AND assessor_id = $3
		    AND COALESCE(cycle_id, '') = COALESCE($4::text, '')`,
		employeeID, competencyID, assessorID, cycleID,
	)

	a, err := scanAssessment(row)

	if err == sql.ErrNoRows {
		return domain.Assessment{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Assessment{}, fmt.Errorf("select assessment by tuple: %w", err)
	}

	return a, nil
}

// UpdateDraft обновляет редактируемые поля черновика. Запись, ушедшая из
// draft между чтением и записью, даёт domain.ErrNotDraft.
func (r *AssessmentRepository) UpdateDraft(ctx context.Context, a domain.Assessment) (domain.Assessment, error) {
	evidence, err := json.Marshal(a.EvidenceFiles)

	if err != nil {
		return domain.Assessment{}, fmt.Errorf("encode evidence_files: %w", err)
	}

	if a.EvidenceFiles == nil {
		evidence = []byte(`[]`)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE assessments
		    SET rating = $2,
		        comments = $3,
		        development_notes = $4,
		        evidence_files = $5,
		        updated_at = $6
		  WHERE id = $1 AND status = $7`,
		a.ID, a.Rating, a.Comments, a.DevelopmentNotes, evidence,
		time.Now().UTC(), string(domain.AssessmentStatusDraft),
	)

	if err != nil {
		return domain.Assessment{}, fmt.Errorf("update draft: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return domain.Assessment{}, fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		if _, gerr := r.GetByID(ctx, a.ID); gerr != nil {
			return domain.Assessment{}, gerr
		}

		return domain.Assessment{}, domain.ErrNotDraft
	}

	return r.GetByID(ctx, a.ID)
}

// ListByCycle возвращает оценки цикла.
func (r *AssessmentRepository) ListByCycle(ctx context.Context, cycleID string) ([]domain.Assessment, error) {
	return r.list(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE cycle_id = $1 ORDER BY created_at`,
		cycleID,
	)
}

// ListByAssessor возвращает оценки, назначенные оценщику.
func (r *AssessmentRepository) ListByAssessor(ctx context.Context, assessorID string) ([]domain.Assessment, error) {
	return r.list(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE assessor_id = $1 ORDER BY created_at`,
		assessorID,
	)
}

func (r *AssessmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Assessment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, fmt.Errorf("select assessments: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.Assessment

	for rows.Next() {
		a, err := scanAssessment(rows)

		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}

		res = append(res, a)
	}

	return res, rows.Err()
}

// CountByStatus возвращает число оценок цикла в разрезе статусов.
func (r *AssessmentRepository) CountByStatus(ctx context.Context, cycleID string) (map[domain.AssessmentStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*)
		   FROM assessments
		  WHERE cycle_id = $1
		  GROUP BY status`,
		cycleID,
	)

	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	res := make(map[domain.AssessmentStatus]int)

	for rows.Next() {
		var (
			status string
			count  int
		)

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}

		res[domain.AssessmentStatus(status)] = count
	}

	return res, rows.Err()
}

// DeleteDraft удаляет черновик. Ушедшая из draft запись не удаляется.
func (r *AssessmentRepository) DeleteDraft(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM assessments WHERE id = $1 AND status = $2`,
		id, string(domain.AssessmentStatusDraft),
	)

	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}

		return domain.ErrNotDraft
	}

	return nil
}

// SubmitTx переводит черновик в submitted условным UPDATE.
// Ноль затронутых строк при живой записи означает проигранную гонку.
func (r *AssessmentRepository) SubmitTx(ctx context.Context, tx *sql.Tx, id string, fields domain.SubmitFields, submittedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE assessments
		    SET status = $2,
		        rating = $3,
		        comments = $4,
		        development_notes = $5,
		        submitted_at = $6,
		        updated_at = $6
		  WHERE id = $1 AND status = $7`,
		id, string(domain.AssessmentStatusSubmitted),
		fields.Rating, fields.Comments, fields.DevelopmentNotes,
		submittedAt, string(domain.AssessmentStatusDraft),
	)

	if err != nil {
		return fmt.Errorf("submit assessment: %w", err)
	}

	return r.checkAffectedTx(ctx, tx, res, id)
}

// SetStatusTx выполняет условный переход статуса from → to.
func (r *AssessmentRepository) SetStatusTx(ctx context.Context, tx *sql.Tx, id string, from, to domain.AssessmentStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE assessments
		    SET status = $2,
		        updated_at = $3
		  WHERE id = $1 AND status = $4`,
		id, string(to), time.Now().UTC(), string(from),
	)

	if err != nil {
		return fmt.Errorf("set assessment status: %w", err)
	}

	return r.checkAffectedTx(ctx, tx, res, id)
}

// SetAssessorTx меняет оценщика.
func (r *AssessmentRepository) SetAssessorTx(ctx context.Context, tx *sql.Tx, id, newAssessorID string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE assessments
		    SET assessor_id = $2,
		        updated_at = $3
		  WHERE id = $1`,
		id, newAssessorID, time.Now().UTC(),
	)

	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.ErrDuplicate
		}

		return fmt.Errorf("set assessor: %w", err)
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

// SetExtendedDeadlineTx записывает продлённый дедлайн.
func (r *AssessmentRepository) SetExtendedDeadlineTx(ctx context.Context, tx *sql.Tx, id string, deadline time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE assessments
		    SET extended_deadline = $2,
		        updated_at = $3
		  WHERE id = $1`,
		id, deadline, time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("set extended deadline: %w", err)
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

// checkAffectedTx различает «запись исчезла» и «запись сменила статус
// параллельным запросом»: второе — признак устаревшего чтения.
func (r *AssessmentRepository) checkAffectedTx(ctx context.Context, tx *sql.Tx, res sql.Result, id string) error {
	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected > 0 {
		return nil
	}

	var exists bool

	err = tx.QueryRowContext(ctx, `SELECT TRUE FROM assessments WHERE id = $1`, id).Scan(&exists)

	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("check assessment exists: %w", err)
	}

	return domain.ErrStaleState
}

// WithTx выполняет переданную функцию как транзакцию.
func (r *AssessmentRepository) WithTx(
	ctx context.Context,
	fn func(ctx context.Context, tx *sql.Tx) error,
) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			_ = tx.Rollback()

		} else {
			err = tx.Commit()
		}
	}()

	err = fn(ctx, tx)
	return err
}
