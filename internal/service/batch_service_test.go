package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"assessment-service/internal/domain"
)

func (e *testEnv) seedSubmitted(id string) domain.Assessment {
	return e.seedDraft(id, func(a *domain.Assessment) {
		a.Status = domain.AssessmentStatusSubmitted
		a.Rating = intPtr(3)
	})
}

func TestApplyBatchIsolation(t *testing.T) {
	env := newTestEnv()

	// Пять оценок на согласование; третья уже согласована.
	ids := make([]string, 0, 5)

	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("a-%d", i)
		ids = append(ids, id)

		if i == 3 {
			env.seedDraft(id, func(a *domain.Assessment) {
				a.Status = domain.AssessmentStatusApproved
				a.Rating = intPtr(3)
			})
			continue
		}

		env.seedSubmitted(id)
	}

	result, err := env.batchSvc.ApplyBatch(context.Background(), ids, BatchActionApprove, hrActor, BatchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Succeeded) != 4 {
		t.Errorf("succeeded = %d, want 4", len(result.Succeeded))
	}

	if len(result.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(result.Failed))
	}

	failure := result.Failed[0]

	if failure.ID != "a-3" {
		t.Errorf("failed id = %s, want a-3", failure.ID)
	}

	if failure.Code != domain.ErrorCodeStateConflict {
		t.Errorf("failure code = %s, want %s", failure.Code, domain.ErrorCodeStateConflict)
	}

	if result.Summary.Total != 5 || result.Summary.Succeeded != 4 || result.Summary.Failed != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestApplyBatchFailureNames(t *testing.T) {
	env := newTestEnv()
	env.seedDraft("a-1") // черновик нельзя approve

	result, err := env.batchSvc.ApplyBatch(context.Background(), []string{"a-1"}, BatchActionApprove, hrActor, BatchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(result.Failed))
	}

	failure := result.Failed[0]

	if failure.EmployeeName != "Ivan Petrov" {
		t.Errorf("employee name = %q", failure.EmployeeName)
	}

	if failure.AssessorName != "Anna Sidorova" {
		t.Errorf("assessor name = %q", failure.AssessorName)
	}

	if failure.CompetencyName != "Go" {
		t.Errorf("competency name = %q", failure.CompetencyName)
	}
}

func TestApplyBatchMissingIDDoesNotAbort(t *testing.T) {
	env := newTestEnv()
	env.seedSubmitted("a-1")

	result, err := env.batchSvc.ApplyBatch(context.Background(), []string{"ghost", "a-1"}, BatchActionApprove, hrActor, BatchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Succeeded) != 1 || result.Succeeded[0] != "a-1" {
		t.Errorf("succeeded = %v, want [a-1]", result.Succeeded)
	}

	if len(result.Failed) != 1 || result.Failed[0].Code != domain.ErrorCodeNotFound {
		t.Errorf("failed = %+v", result.Failed)
	}
}

func TestApplyBatchUnknownAction(t *testing.T) {
	env := newTestEnv()

	_, err := env.batchSvc.ApplyBatch(context.Background(), []string{"a-1"}, BatchAction("promote"), hrActor, BatchOptions{})

	wantCode(t, err, domain.ErrorCodeValidation)
}

func TestApplyBatchRejectNeedsReason(t *testing.T) {
	env := newTestEnv()
	env.seedSubmitted("a-1")

	_, err := env.batchSvc.ApplyBatch(context.Background(), []string{"a-1"}, BatchActionReject, hrActor, BatchOptions{})

	wantCode(t, err, domain.ErrorCodeValidation)
}

func TestApplyBatchReassignNeedsAssessor(t *testing.T) {
	env := newTestEnv()

	_, err := env.batchSvc.ApplyBatch(context.Background(), []string{"a-1"}, BatchActionReassign, hrActor, BatchOptions{})

	wantCode(t, err, domain.ErrorCodeValidation)
}

func TestApplyBatchSubmitUsesDrafts(t *testing.T) {
	env := newTestEnv()
	env.seedDraft("a-1", func(a *domain.Assessment) {
		a.Rating = intPtr(3)
	})
	env.seedDraft("a-2", func(a *domain.Assessment) {
		a.EmployeeID = "assessor-2" // другая комбинация
		a.Rating = intPtr(5)
		a.Comments = "exceptional quarter"
	})
	// без рейтинга: элемент должен упасть с валидацией
	env.seedDraft("a-3", func(a *domain.Assessment) {
		a.CompetencyID = "comp-other"
	})

	result, err := env.batchSvc.ApplyBatch(context.Background(), []string{"a-1", "a-2", "a-3"}, BatchActionSubmit, assessorActor, BatchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %v, want 2 items", result.Succeeded)
	}

	if len(result.Failed) != 1 || result.Failed[0].Code != domain.ErrorCodeValidation {
		t.Errorf("failed = %+v", result.Failed)
	}
}

func TestApplyBatchExtendDeadline(t *testing.T) {
	env := newTestEnv()
	cycle := env.seedCycle("c-1", domain.CycleStatusActive)
	env.seedDraft("a-1", func(a *domain.Assessment) {
		a.CycleID = &cycle.ID
	})

	deadline := cycle.EndDate.Add(48 * time.Hour)
	result, err := env.batchSvc.ApplyBatch(context.Background(), []string{"a-1"}, BatchActionExtendDeadline, hrActor, BatchOptions{
		NewDeadline: &deadline,
		Reason:      "sick leave",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Succeeded) != 1 {
		t.Fatalf("succeeded = %v", result.Succeeded)
	}

	a, _ := env.assessments.GetByID(context.Background(), "a-1")

	if a.ExtendedDeadline == nil || !a.ExtendedDeadline.Equal(deadline) {
		t.Errorf("extended_deadline = %v, want %v", a.ExtendedDeadline, deadline)
	}
}

func TestBulkCreate(t *testing.T) {
	env := newTestEnv()
	cycle := env.seedCycle("c-1", domain.CycleStatusActive)

	items := []BulkCreateItem{
		{EmployeeID: "emp-1", CompetencyID: "comp-1", AssessorID: "assessor-1", Type: domain.AssessmentTypeManager},
		{EmployeeID: "emp-1", CompetencyID: "comp-1", AssessorID: "assessor-2", Type: domain.AssessmentTypePeer},
		// дубликат первой комбинации
		{EmployeeID: "emp-1", CompetencyID: "comp-1", AssessorID: "assessor-1", Type: domain.AssessmentTypeManager},
	}

	admin := domain.Actor{ID: "hr-1", Roles: []domain.Role{domain.RoleAdmin}}
	result, err := env.batchSvc.BulkCreate(context.Background(), cycle.ID, items, admin)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %d, want 2", len(result.Succeeded))
	}

	if len(result.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(result.Failed))
	}

	failure := result.Failed[0]

	if failure.Code != domain.ErrorCodeConstraint {
		t.Errorf("failure code = %s, want %s", failure.Code, domain.ErrorCodeConstraint)
	}

	if failure.ID != items[2].Key() {
		t.Errorf("failure id = %s, want %s", failure.ID, items[2].Key())
	}
}

func TestBulkCreateSelfItems(t *testing.T) {
	// Цикл с типом self наполняется администратором от имени сотрудников.
	env := newTestEnv()
	cycle := env.seedCycle("c-1", domain.CycleStatusActive)

	items := []BulkCreateItem{
		{EmployeeID: "emp-1", CompetencyID: "comp-1", Type: domain.AssessmentTypeSelf},
		{EmployeeID: "assessor-1", CompetencyID: "comp-1", Type: domain.AssessmentTypeSelf},
	}

	admin := domain.Actor{ID: "hr-1", Roles: []domain.Role{domain.RoleAdmin, domain.RoleHR}}
	result, err := env.batchSvc.BulkCreate(context.Background(), cycle.ID, items, admin)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Failed) != 0 {
		t.Fatalf("failed = %+v, want none", result.Failed)
	}

	if len(result.Succeeded) != 2 {
		t.Fatalf("succeeded = %d, want 2", len(result.Succeeded))
	}

	a, err := env.assessments.GetByID(context.Background(), result.Succeeded[0])

	if err != nil {
		t.Fatalf("created assessment not found: %v", err)
	}

	if a.AssessorID != a.EmployeeID {
		t.Errorf("self assessor_id = %s, employee_id = %s", a.AssessorID, a.EmployeeID)
	}
}

func TestBulkCreateRequiresCycle(t *testing.T) {
	env := newTestEnv()

	_, err := env.batchSvc.BulkCreate(context.Background(), "", nil, hrActor)

	wantCode(t, err, domain.ErrorCodeValidation)
}
