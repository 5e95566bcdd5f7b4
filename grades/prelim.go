// Package grades computes prelim class standing and the prelim exam score
// a student still needs.
//
//	PrelimGrade   = Exam*0.30 + ClassStanding*0.70
//	ClassStanding = Attendance%*0.40 + LabAverage*0.60
package grades

import (
	"errors"
	"fmt"

	"class-records/common"
)

// ErrInvalidInput wraps every input rejection from ComputePrelim.
var ErrInvalidInput = errors.New("invalid input")

// Final grades the required exam scores are solved for.
const (
	PassingGrade   = 75.0
	ExcellentGrade = 100.0
)

// AutoFailAbsences is the absence count that fails a student without a
// valid excuse.
const AutoFailAbsences = 4

// PrelimInput holds raw attendance counts and the three lab grades.
type PrelimInput struct {
	TotalWeeks   int     `json:"total_weeks"`
	LateEnrollee bool    `json:"late_enrollee"`
	MissedBefore int     `json:"missed_before"` // weeks before enrollment; late enrollees only
	Absences     int     `json:"absences"`
	HasExcuse    bool    `json:"has_excuse"`
	Lab1         float64 `json:"lab1"`
	Lab2         float64 `json:"lab2"`
	Lab3         float64 `json:"lab3"`
}

// Outcome classifies a required exam score.
type Outcome string

const (
	OutcomeNotNeeded   Outcome = "not_needed"
	OutcomeNeeded      Outcome = "needed"
	OutcomeUnreachable Outcome = "unreachable"
)

// Requirement is the exam score needed to reach Target.
type Requirement struct {
	Target   float64 `json:"target"`
	Required float64 `json:"required"`
	Outcome  Outcome `json:"outcome"`
}

// PrelimResult is the computed standing. When AutomaticFail is set only
// the week counts are filled in.
type PrelimResult struct {
	Input         PrelimInput  `json:"input"`
	CountedWeeks  int          `json:"counted_weeks"`
	AttendedWeeks int          `json:"attended_weeks"`
	AutomaticFail bool         `json:"automatic_fail"`
	AttendancePct float64      `json:"attendance_pct"`
	LabAverage    float64      `json:"lab_average"`
	ClassStanding float64      `json:"class_standing"`
	Pass          *Requirement `json:"pass,omitempty"`
	Excellent     *Requirement `json:"excellent,omitempty"`
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// CountedWeeks is the number of weeks attendance is measured over.
func (in PrelimInput) CountedWeeks() int {
	if in.LateEnrollee {
		return in.TotalWeeks - in.MissedBefore
	}
	return in.TotalWeeks
}

// Validate reports the first problem with in, wrapped in ErrInvalidInput.
func (in PrelimInput) Validate() error {
	for i, lab := range []float64{in.Lab1, in.Lab2, in.Lab3} {
		if verr := common.ValidateRange(fmt.Sprintf("lab%d", i+1), lab, 0, 100); verr != nil {
			return invalid(verr.Message)
		}
	}
	if in.LateEnrollee {
		if in.MissedBefore < 0 {
			return invalid("weeks missed before enrollment cannot be negative")
		}
		if in.MissedBefore >= in.TotalWeeks {
			return invalid("weeks missed before enrollment must be less than total weeks")
		}
	}
	counted := in.CountedWeeks()
	if counted < 1 {
		return invalid("counted weeks must be at least 1")
	}
	if in.Absences < 0 || in.Absences > counted {
		return invalid("absences must be between 0 and the counted weeks")
	}
	return nil
}

// ComputePrelim derives class standing and the exam scores needed to pass
// and to reach an excellent final grade.
func ComputePrelim(in PrelimInput) (PrelimResult, error) {
	if err := in.Validate(); err != nil {
		return PrelimResult{}, err
	}
	if !in.LateEnrollee {
		in.MissedBefore = 0
	}

	res := PrelimResult{
		Input:         in,
		CountedWeeks:  in.CountedWeeks(),
		AttendedWeeks: in.CountedWeeks() - in.Absences,
	}
	if in.Absences >= AutoFailAbsences && !in.HasExcuse {
		res.AutomaticFail = true
		return res, nil
	}

	res.AttendancePct = float64(res.AttendedWeeks) / float64(res.CountedWeeks) * 100
	res.LabAverage = (in.Lab1 + in.Lab2 + in.Lab3) / 3
	res.ClassStanding = res.AttendancePct*0.40 + res.LabAverage*0.60
	res.Pass = requirement(PassingGrade, res.ClassStanding)
	res.Excellent = requirement(ExcellentGrade, res.ClassStanding)
	return res, nil
}

func requirement(target, standing float64) *Requirement {
	r := &Requirement{Target: target, Required: (target - standing*0.70) / 0.30}
	switch {
	case r.Required <= 0:
		r.Outcome = OutcomeNotNeeded
	case r.Required > 100:
		r.Outcome = OutcomeUnreachable
	default:
		r.Outcome = OutcomeNeeded
	}
	return r
}
