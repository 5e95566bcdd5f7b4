package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Typical(t *testing.T) {
	res, err := ComputePrelim(typical())
	require.NoError(t, err)

	want := "Computed values\n" +
		"-------------------------------\n" +
		"Total prelim weeks counted : 10\n" +
		"Attended weeks             : 8\n" +
		"Attendance percentage      : 80.00%\n" +
		"Lab Work 1                 : 80.00\n" +
		"Lab Work 2                 : 75.00\n" +
		"Lab Work 3                 : 90.00\n" +
		"Lab Work Average           : 81.67\n" +
		"Class Standing (component for final, 70%) : 81.00\n" +
		"\n" +
		"Required Prelim Exam to PASS (final = 75)\n" +
		"-------------------------------\n" +
		"Required Exam (pass)   : 61.00\n" +
		"Remark                 : You need at least 61.00% on the exam to reach 75.\n" +
		"\n" +
		"Required Prelim Exam to ACHIEVE EXCELLENT (final = 100)\n" +
		"-------------------------------\n" +
		"Required Exam (excellent): >100\n" +
		"Remark                   : Even a perfect exam cannot reach excellent.\n"
	assert.Equal(t, want, Report(res))
}

func TestReport_LateEnrolleeLine(t *testing.T) {
	res, err := ComputePrelim(lateEnrollee())
	require.NoError(t, err)
	assert.Contains(t, Report(res), "Late enrollee, weeks missed before enrollment: 3\n")
}

func TestReport_AutomaticFail(t *testing.T) {
	in := typical()
	in.Absences = 5
	res, err := ComputePrelim(in)
	require.NoError(t, err)

	want := "AUTOMATIC FAIL\n" +
		"-------------------------------\n" +
		"Reason: 4 or more absences without a valid excuse.\n" +
		"Total prelim weeks counted: 10\n" +
		"Absences reported         : 5\n"
	assert.Equal(t, want, Report(res))
}

func TestReport_NotNeeded(t *testing.T) {
	res := PrelimResult{
		Pass:      &Requirement{Target: 75, Required: -3, Outcome: OutcomeNotNeeded},
		Excellent: &Requirement{Target: 100, Required: -1, Outcome: OutcomeNotNeeded},
	}
	out := Report(res)
	assert.Contains(t, out, "Required Exam (pass)   : 0.00\nRemark                 : No exam needed to reach a passing final grade.\n")
	assert.Contains(t, out, "Required Exam (excellent): 0.00\nRemark                   : Current standing already yields excellent without exam.\n")
}
