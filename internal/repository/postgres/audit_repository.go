package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"assessment-service/internal/domain"
)

// AuditRepository реализует domain.AuditRepository поверх трёх append-only
// журналов: смены статуса, продления дедлайна и переназначения оценщика.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository создаёт новый AuditRepository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertStatusChangeTx пишет запись о смене статуса в рамках транзакции.
func (r *AuditRepository) InsertStatusChangeTx(ctx context.Context, tx *sql.Tx, e domain.StatusChangeEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO assessment_status_log (assessment_id, old_status, new_status, changed_by, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.AssessmentID, string(e.OldStatus), string(e.NewStatus), e.ChangedBy, e.Reason, e.At,
	)

	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}

	return nil
}

// InsertDeadlineExtensionTx пишет запись о продлении дедлайна в рамках транзакции.
func (r *AuditRepository) InsertDeadlineExtensionTx(ctx context.Context, tx *sql.Tx, e domain.DeadlineExtensionEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO assessment_deadline_log (assessment_id, old_deadline, new_deadline, extended_by, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.AssessmentID, e.OldDeadline, e.NewDeadline, e.ExtendedBy, e.Reason, e.At,
	)

	if err != nil {
		return fmt.Errorf("insert deadline extension: %w", err)
	}

	return nil
}

// InsertReassignmentTx пишет запись о переназначении оценщика в рамках транзакции.
func (r *AuditRepository) InsertReassignmentTx(ctx context.Context, tx *sql.Tx, e domain.ReassignmentEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO assessment_reassign_log (assessment_id, old_assessor_id, new_assessor_id, reassigned_by, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.AssessmentID, e.OldAssessorID, e.NewAssessorID, e.ReassignedBy, e.Reason, e.At,
	)

	if err != nil {
		return fmt.Errorf("insert reassignment: %w", err)
	}

	return nil
}

// ListByAssessment возвращает объединённую историю оценки, новые записи первыми.
func (r *AuditRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, assessment_id, old_status, new_status, changed_by, reason, created_at
		   FROM assessment_status_log
		  WHERE assessment_id = $1`,
		assessmentID,
	)

	if err != nil {
		return nil, fmt.Errorf("select status log: %w", err)
	}

	for rows.Next() {
		var e domain.StatusChangeEntry

		if err := rows.Scan(&e.ID, &e.AssessmentID, &e.OldStatus, &e.NewStatus, &e.ChangedBy, &e.Reason, &e.At); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan status log: %w", err)
		}

		entries = append(entries, domain.AuditEntry{StatusChange: &e})
	}

	_ = rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT id, assessment_id, old_deadline, new_deadline, extended_by, reason, created_at
		   FROM assessment_deadline_log
		  WHERE assessment_id = $1`,
		assessmentID,
	)

	if err != nil {
		return nil, fmt.Errorf("select deadline log: %w", err)
	}

	for rows.Next() {
		var e domain.DeadlineExtensionEntry

		if err := rows.Scan(&e.ID, &e.AssessmentID, &e.OldDeadline, &e.NewDeadline, &e.ExtendedBy, &e.Reason, &e.At); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan deadline log: %w", err)
		}

		entries = append(entries, domain.AuditEntry{DeadlineExtension: &e})
	}

	_ = rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT id, assessment_id, old_assessor_id, new_assessor_id, reassigned_by, reason, created_at
		   FROM assessment_reassign_log
		  WHERE assessment_id = $1`,
		assessmentID,
	)

	if err != nil {
		return nil, fmt.Errorf("select reassign log: %w", err)
	}

	for rows.Next() {
		var e domain.ReassignmentEntry

		if err := rows.Scan(&e.ID, &e.AssessmentID, &e.OldAssessorID, &e.NewAssessorID, &e.ReassignedBy, &e.Reason, &e.At); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan reassign log: %w", err)
		}

		entries = append(entries, domain.AuditEntry{Reassignment: &e})
	}

	_ = rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// История отдаётся в порядке «новые первыми» для отображения.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].At().After(entries[j].At())
	})

	return entries, nil
}
