package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"assessment-service/internal/domain"
	"assessment-service/internal/logging"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer

	sender := NewLogSender(logging.NewLoggerTo(&buf, "test"))
	a := domain.Assessment{ID: "a-1", EmployeeID: "emp-1", AssessorID: "assessor-1"}

	sender.AssessmentSubmitted(context.Background(), a)
	sender.AssessmentApproved(context.Background(), a)
	sender.AssessmentRejected(context.Background(), a)

	out := buf.String()

	for _, want := range []string{"assessment submitted", "assessment approved", "assessment rejected", "a-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output does not contain %q:\n%s", want, out)
		}
	}
}
