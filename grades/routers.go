package grades

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrelimRequest is the calculator form. Lab grades are pointers so a
// missing grade is told apart from a zero.
type PrelimRequest struct {
	TotalWeeks   int      `json:"total_weeks" form:"total_weeks" binding:"required"`
	LateEnrollee bool     `json:"late_enrollee" form:"late_enrollee"`
	MissedBefore int      `json:"missed_before" form:"missed_before"`
	Absences     int      `json:"absences" form:"absences"`
	HasExcuse    bool     `json:"has_excuse" form:"has_excuse"`
	Lab1         *float64 `json:"lab1" form:"lab1" binding:"required"`
	Lab2         *float64 `json:"lab2" form:"lab2" binding:"required"`
	Lab3         *float64 `json:"lab3" form:"lab3" binding:"required"`
}

// PrelimResponse carries the computed values and the text report.
type PrelimResponse struct {
	Result PrelimResult `json:"result"`
	Report string       `json:"report"`
}

func (r PrelimRequest) input() PrelimInput {
	return PrelimInput{
		TotalWeeks:   r.TotalWeeks,
		LateEnrollee: r.LateEnrollee,
		MissedBefore: r.MissedBefore,
		Absences:     r.Absences,
		HasExcuse:    r.HasExcuse,
		Lab1:         *r.Lab1,
		Lab2:         *r.Lab2,
		Lab3:         *r.Lab3,
	}
}

// RegisterRoutes mounts POST /prelim on rg (typically /api/v1/grades).
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/prelim", ComputePrelimHandler)
}

// ComputePrelimHandler godoc
// @Summary Compute prelim standing
// @Description Class standing and the prelim exam score needed for 75 and 100. format=text returns only the report.
// @Tags grades
// @Accept json
// @Produce json
// @Produce text/plain
// @Param input body PrelimRequest true "Attendance and lab grades"
// @Param format query string false "json (default) or text"
// @Success 200 {object} PrelimResponse
// @Failure 400 {object} map[string]string
// @Router /grades/prelim [post]
func ComputePrelimHandler(c *gin.Context) {
	var req PrelimRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter valid lab grades (0 - 100) and total weeks"})
		return
	}

	res, err := ComputePrelim(req.input())
	if errors.Is(err, ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	report := Report(res)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, report)
		return
	}
	c.JSON(http.StatusOK, PrelimResponse{Result: res, Report: report})
}
