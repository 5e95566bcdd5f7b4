package grades

import (
	"fmt"
	"strings"
)

const rule = "-------------------------------\n"

// Report renders res as a copy-friendly text block.
func Report(res PrelimResult) string {
	var b strings.Builder
	if res.AutomaticFail {
		b.WriteString("AUTOMATIC FAIL\n")
		b.WriteString(rule)
		b.WriteString("Reason: 4 or more absences without a valid excuse.\n")
		fmt.Fprintf(&b, "Total prelim weeks counted: %d\n", res.CountedWeeks)
		fmt.Fprintf(&b, "Absences reported         : %d\n", res.Input.Absences)
		return b.String()
	}

	in := res.Input
	b.WriteString("Computed values\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Total prelim weeks counted : %d\n", res.CountedWeeks)
	if in.LateEnrollee {
		fmt.Fprintf(&b, "Late enrollee, weeks missed before enrollment: %d\n", in.MissedBefore)
	}
	fmt.Fprintf(&b, "Attended weeks             : %d\n", res.AttendedWeeks)
	fmt.Fprintf(&b, "Attendance percentage      : %.2f%%\n", res.AttendancePct)
	fmt.Fprintf(&b, "Lab Work 1                 : %.2f\n", in.Lab1)
	fmt.Fprintf(&b, "Lab Work 2                 : %.2f\n", in.Lab2)
	fmt.Fprintf(&b, "Lab Work 3                 : %.2f\n", in.Lab3)
	fmt.Fprintf(&b, "Lab Work Average           : %.2f\n", res.LabAverage)
	fmt.Fprintf(&b, "Class Standing (component for final, 70%%) : %.2f\n", res.ClassStanding)
	b.WriteString("\n")

	b.WriteString("Required Prelim Exam to PASS (final = 75)\n")
	b.WriteString(rule)
	writeRequirement(&b, res.Pass, "pass", "   ", "a passing final grade", "No exam needed to reach a passing final grade.")
	b.WriteString("\n")

	b.WriteString("Required Prelim Exam to ACHIEVE EXCELLENT (final = 100)\n")
	b.WriteString(rule)
	writeRequirement(&b, res.Excellent, "excellent", "", "excellent", "Current standing already yields excellent without exam.")
	return b.String()
}

func writeRequirement(b *strings.Builder, r *Requirement, label, pad, goal, notNeeded string) {
	if r == nil {
		return
	}
	remarkPad := strings.Repeat(" ", len("Required Exam ("+label+")")-len("Remark")) + pad
	fmt.Fprintf(b, "Required Exam (%s)%s: ", label, pad)
	switch r.Outcome {
	case OutcomeNotNeeded:
		b.WriteString("0.00\n")
		fmt.Fprintf(b, "Remark%s: %s\n", remarkPad, notNeeded)
	case OutcomeUnreachable:
		b.WriteString(">100\n")
		fmt.Fprintf(b, "Remark%s: Even a perfect exam cannot reach %s.\n", remarkPad, goal)
	default:
		fmt.Fprintf(b, "%.2f\n", r.Required)
		fmt.Fprintf(b, "Remark%s: You need at least %.2f%% on the exam to reach %g.\n", remarkPad, r.Required, r.Target)
	}
}
