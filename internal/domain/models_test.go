package domain

import "testing"

func TestAssessmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from AssessmentStatus
		to   AssessmentStatus
		want bool
	}{
		{AssessmentStatusDraft, AssessmentStatusSubmitted, true},
		{AssessmentStatusDraft, AssessmentStatusApproved, false},
		{AssessmentStatusDraft, AssessmentStatusRejected, false},
		{AssessmentStatusSubmitted, AssessmentStatusApproved, true},
		{AssessmentStatusSubmitted, AssessmentStatusRejected, true},
		{AssessmentStatusSubmitted, AssessmentStatusDraft, false},
		{AssessmentStatusApproved, AssessmentStatusDraft, false},
		{AssessmentStatusApproved, AssessmentStatusSubmitted, false},
		{AssessmentStatusRejected, AssessmentStatusDraft, false},
		{AssessmentStatusRejected, AssessmentStatusSubmitted, false},
		{AssessmentStatus("unknown"), AssessmentStatusSubmitted, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAssessmentStatusIsTerminal(t *testing.T) {
	if AssessmentStatusDraft.IsTerminal() || AssessmentStatusSubmitted.IsTerminal() {
		t.Error("draft and submitted must not be terminal")
	}

	if !AssessmentStatusApproved.IsTerminal() || !AssessmentStatusRejected.IsTerminal() {
		t.Error("approved and rejected must be terminal")
	}
}

func TestCycleStatusTransitions(t *testing.T) {
	tests := []struct {
		from CycleStatus
		to   CycleStatus
		want bool
	}{
		{CycleStatusPlanned, CycleStatusActive, true},
		{CycleStatusPlanned, CycleStatusCancelled, true},
		{CycleStatusPlanned, CycleStatusCompleted, false},
		{CycleStatusActive, CycleStatusCompleted, true},
		{CycleStatusActive, CycleStatusCancelled, true},
		{CycleStatusActive, CycleStatusPlanned, false},
		{CycleStatusCompleted, CycleStatusActive, false},
		{CycleStatusCompleted, CycleStatusCancelled, false},
		{CycleStatusCancelled, CycleStatusActive, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAssessmentTypeValid(t *testing.T) {
	for _, valid := range []AssessmentType{AssessmentTypeSelf, AssessmentTypeManager, AssessmentTypePeer, AssessmentType360} {
		if !valid.Valid() {
			t.Errorf("%s reported invalid", valid)
		}
	}

	for _, invalid := range []AssessmentType{"", "downward", "SELF"} {
		if invalid.Valid() {
			t.Errorf("%q reported valid", invalid)
		}
	}
}

func TestActorRoles(t *testing.T) {
	actor := Actor{ID: "u-1", Roles: []Role{RoleManager, RoleEmployee}}

	if !actor.HasRole(RoleManager) {
		t.Error("expected manager role")
	}

	if actor.HasRole(RoleAdmin) {
		t.Error("unexpected admin role")
	}

	if !actor.HasAnyRole(RoleAdmin, RoleEmployee) {
		t.Error("expected match on employee")
	}

	if actor.HasAnyRole(RoleAdmin, RoleHR) {
		t.Error("unexpected match")
	}
}
