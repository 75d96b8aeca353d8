package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"assessment-service/internal/domain"
)

// fakeAssessmentRepo — in-memory реализация domain.AssessmentRepository.
// Tx-методы получают nil-транзакцию: WithTx у фейка не открывает соединений.
type fakeAssessmentRepo struct {
	mu    sync.Mutex
	items map[string]domain.Assessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{items: make(map[string]domain.Assessment)}
}

func (r *fakeAssessmentRepo) put(a domain.Assessment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
}

func (r *fakeAssessmentRepo) tupleKeyOf(employeeID, competencyID, assessorID string, cycleID *string) string {
	cycle := ""

	if cycleID != nil {
		cycle = *cycleID
	}

	return employeeID + "|" + competencyID + "|" + assessorID + "|" + cycle
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, a domain.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.tupleKeyOf(a.EmployeeID, a.CompetencyID, a.AssessorID, a.CycleID)

	for _, existing := range r.items {
		if r.tupleKeyOf(existing.EmployeeID, existing.CompetencyID, existing.AssessorID, existing.CycleID) == key {
			return domain.ErrDuplicate
		}
	}

	r.items[a.ID] = a
	return nil
}

func (r *fakeAssessmentRepo) GetByID(ctx context.Context, id string) (domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return domain.Assessment{}, domain.ErrNotFound
	}

	return a, nil
}

func (r *fakeAssessmentRepo) FindByTuple(ctx context.Context, employeeID, competencyID, assessorID string, cycleID *string) (domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.tupleKeyOf(employeeID, competencyID, assessorID, cycleID)

	for _, a := range r.items {
		if r.tupleKeyOf(a.EmployeeID, a.CompetencyID, a.AssessorID, a.CycleID) == key {
			return a, nil
		}
	}

	return domain.Assessment{}, domain.ErrNotFound
}

func (r *fakeAssessmentRepo) UpdateDraft(ctx context.Context, a domain.Assessment) (domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[a.ID]

	if !ok {
		return domain.Assessment{}, domain.ErrNotFound
	}

	if current.Status != domain.AssessmentStatusDraft {
		return domain.Assessment{}, domain.ErrNotDraft
	}

	current.Rating = a.Rating
	current.Comments = a.Comments
	current.DevelopmentNotes = a.DevelopmentNotes
	current.EvidenceFiles = a.EvidenceFiles
	current.UpdatedAt = time.Now().UTC()
	r.items[a.ID] = current

	return current, nil
}

func (r *fakeAssessmentRepo) ListByCycle(ctx context.Context, cycleID string) ([]domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []domain.Assessment

	for _, a := range r.items {
		if a.CycleID != nil && *a.CycleID == cycleID {
			res = append(res, a)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

func (r *fakeAssessmentRepo) ListByAssessor(ctx context.Context, assessorID string) ([]domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []domain.Assessment

	for _, a := range r.items {
		if a.AssessorID == assessorID {
			res = append(res, a)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

func (r *fakeAssessmentRepo) CountByStatus(ctx context.Context, cycleID string) (map[domain.AssessmentStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make(map[domain.AssessmentStatus]int)

	for _, a := range r.items {
		if a.CycleID != nil && *a.CycleID == cycleID {
			res[a.Status]++
		}
	}

	return res, nil
}

func (r *fakeAssessmentRepo) DeleteDraft(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	if a.Status != domain.AssessmentStatusDraft {
		return domain.ErrNotDraft
	}

	delete(r.items, id)
	return nil
}

func (r *fakeAssessmentRepo) SubmitTx(ctx context.Context, tx *sql.Tx, id string, fields domain.SubmitFields, submittedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	if a.Status != domain.AssessmentStatusDraft {
		return domain.ErrStaleState
	}

	rating := fields.Rating
	a.Rating = &rating
	a.Comments = fields.Comments
	a.DevelopmentNotes = fields.DevelopmentNotes
	a.Status = domain.AssessmentStatusSubmitted
	a.SubmittedAt = &submittedAt
	a.UpdatedAt = submittedAt
	r.items[id] = a

	return nil
}

func (r *fakeAssessmentRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id string, from, to domain.AssessmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	if a.Status != from {
		return domain.ErrStaleState
	}

	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a

	return nil
}

func (r *fakeAssessmentRepo) SetAssessorTx(ctx context.Context, tx *sql.Tx, id, newAssessorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	a.AssessorID = newAssessorID
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a

	return nil
}

func (r *fakeAssessmentRepo) SetExtendedDeadlineTx(ctx context.Context, tx *sql.Tx, id string, deadline time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	a.ExtendedDeadline = &deadline
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a

	return nil
}

func (r *fakeAssessmentRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return fn(ctx, nil)
}

// fakeCycleRepo — in-memory реализация domain.CycleRepository.
type fakeCycleRepo struct {
	mu    sync.Mutex
	items map[string]domain.AssessmentCycle
	// владелец оценок нужен для запрета удаления цикла с оценками
	assessments *fakeAssessmentRepo
}

func newFakeCycleRepo(assessments *fakeAssessmentRepo) *fakeCycleRepo {
	return &fakeCycleRepo{
		items:       make(map[string]domain.AssessmentCycle),
		assessments: assessments,
	}
}

func (r *fakeCycleRepo) put(c domain.AssessmentCycle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c
}

func (r *fakeCycleRepo) Create(ctx context.Context, c domain.AssessmentCycle) error {
	r.put(c)
	return nil
}

func (r *fakeCycleRepo) GetByID(ctx context.Context, id string) (domain.AssessmentCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		return domain.AssessmentCycle{}, domain.ErrNotFound
	}

	return c, nil
}

func (r *fakeCycleRepo) SetStatus(ctx context.Context, id string, from, to domain.CycleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	if c.Status != from {
		return domain.ErrStaleState
	}

	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	r.items[id] = c

	return nil
}

func (r *fakeCycleRepo) AppendDescription(ctx context.Context, id, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	if c.Description == "" {
		c.Description = note

	} else {
		c.Description += "\n" + note
	}

	r.items[id] = c
	return nil
}

func (r *fakeCycleRepo) ExtendEndDate(ctx context.Context, id string, newEnd time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		return domain.ErrNotFound
	}

	if c.Status != domain.CycleStatusActive {
		return domain.ErrStaleState
	}

	c.EndDate = newEnd
	c.UpdatedAt = time.Now().UTC()
	r.items[id] = c

	return nil
}

func (r *fakeCycleRepo) Delete(ctx context.Context, id string) error {
	if r.assessments != nil {
		linked, _ := r.assessments.ListByCycle(ctx, id)

		if len(linked) > 0 {
			return domain.ErrCycleHasAssessment
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

// fakeAuditRepo — in-memory журналы аудита.
type fakeAuditRepo struct {
	mu        sync.Mutex
	statuses  []domain.StatusChangeEntry
	deadlines []domain.DeadlineExtensionEntry
	reassigns []domain.ReassignmentEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) InsertStatusChangeTx(ctx context.Context, tx *sql.Tx, e domain.StatusChangeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, e)
	return nil
}

func (r *fakeAuditRepo) InsertDeadlineExtensionTx(ctx context.Context, tx *sql.Tx, e domain.DeadlineExtensionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadlines = append(r.deadlines, e)
	return nil
}

func (r *fakeAuditRepo) InsertReassignmentTx(ctx context.Context, tx *sql.Tx, e domain.ReassignmentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reassigns = append(r.reassigns, e)
	return nil
}

func (r *fakeAuditRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []domain.AuditEntry

	for i := range r.statuses {
		if r.statuses[i].AssessmentID == assessmentID {
			e := r.statuses[i]
			res = append(res, domain.AuditEntry{StatusChange: &e})
		}
	}

	for i := range r.deadlines {
		if r.deadlines[i].AssessmentID == assessmentID {
			e := r.deadlines[i]
			res = append(res, domain.AuditEntry{DeadlineExtension: &e})
		}
	}

	for i := range r.reassigns {
		if r.reassigns[i].AssessmentID == assessmentID {
			e := r.reassigns[i]
			res = append(res, domain.AuditEntry{Reassignment: &e})
		}
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].At().After(res[j].At())
	})

	return res, nil
}

// fakeEmployeeRepo — in-memory справочник сотрудников.
type fakeEmployeeRepo struct {
	items map[string]domain.Employee
}

func newFakeEmployeeRepo(employees ...domain.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{items: make(map[string]domain.Employee)}

	for _, e := range employees {
		r.items[e.ID] = e
	}

	return r
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	e, ok := r.items[id]

	if !ok {
		return domain.Employee{}, domain.ErrNotFound
	}

	return e, nil
}

// fakeCompetencyRepo — in-memory справочник компетенций.
type fakeCompetencyRepo struct {
	items map[string]domain.Competency
}

func newFakeCompetencyRepo(competencies ...domain.Competency) *fakeCompetencyRepo {
	r := &fakeCompetencyRepo{items: make(map[string]domain.Competency)}

	for _, c := range competencies {
		r.items[c.ID] = c
	}

	return r
}

func (r *fakeCompetencyRepo) GetByID(ctx context.Context, id string) (domain.Competency, error) {
	c, ok := r.items[id]

	if !ok {
		return domain.Competency{}, domain.ErrNotFound
	}

	return c, nil
}

// noopSender — заглушка Sender, считающая вызовы.
type noopSender struct {
	mu        sync.Mutex
	submitted int
	approved  int
	rejected  int
}

func (s *noopSender) AssessmentSubmitted(ctx context.Context, a domain.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted++
}

func (s *noopSender) AssessmentApproved(ctx context.Context, a domain.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved++
}

func (s *noopSender) AssessmentRejected(ctx context.Context, a domain.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected++
}
