// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// RiskLevel is the categorical attrition risk for an employee.
type RiskLevel string

// Risk levels, ordered from least to most urgent.
const (
	LevelLow    RiskLevel = "LOW"
	LevelMedium RiskLevel = "MEDIUM"
	LevelHigh   RiskLevel = "HIGH"
)

// Valid reports whether l is one of the three known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// ParseRiskLevel converts a wire string to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown risk level %q", s)
	}
	return l, nil
}

// AssessmentSource records which path produced a risk assessment.
type AssessmentSource string

// Assessment sources.
const (
	SourceRemote   AssessmentSource = "remote"
	SourceFallback AssessmentSource = "fallback"
)

// Nominal bounds for profile fields.
const (
	MaxPerformanceRating = 5.0
	MaxRiskScore         = 100
)

// Profile is the input feature set describing one employee.
// TenureYears, PerformanceRating and Compensation at their zero value are
// treated as unset; the heuristic path substitutes defaults for them.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
	HireYear   int    `json:"hire_year,omitempty"`

	TenureYears       float64 `json:"tenure_years"`
	PerformanceRating float64 `json:"performance_rating"`
	Compensation      float64 `json:"compensation"`

	// Categorical features consumed only by the remote prediction path.
	Age            int     `json:"age,omitempty"`
	JobLevel       int     `json:"job_level,omitempty"`
	Satisfaction   float64 `json:"satisfaction,omitempty"`
	Overtime       bool    `json:"overtime,omitempty"`
	MaritalStatus  string  `json:"marital_status,omitempty"`
	BusinessTravel string  `json:"business_travel,omitempty"`
}

// Validate rejects profiles whose set numeric fields are out of range.
// Unset optional fields are fine; the heuristic defaults them.
func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return errors.New("missing name")
	case p.TenureYears < 0:
		return errors.New("tenure_years must be >= 0")
	case p.PerformanceRating < 0 || p.PerformanceRating > MaxPerformanceRating:
		return errors.New("performance_rating must be within [0,5]")
	case p.Compensation < 0:
		return errors.New("compensation must be >= 0")
	}
	return nil
}

// RiskAssessment is the {score, level, plan} triple produced for a profile.
// Plan is empty when the score does not warrant a retention action.
type RiskAssessment struct {
	Score       int              `json:"risk_score"`
	Level       RiskLevel        `json:"risk_level"`
	Plan        string           `json:"retention_plan,omitempty"`
	Source      AssessmentSource `json:"source"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// HasPlan reports whether the assessment carries a retention plan.
func (a RiskAssessment) HasPlan() bool { return a.Plan != "" }

// Employee is a profile merged with its latest risk assessment. The store
// owns the canonical copy; Version increases on every upsert.
type Employee struct {
	Profile
	Assessment *RiskAssessment `json:"assessment,omitempty"`
	Version    uint64          `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Merge overlays the set fields of in onto e and returns the result.
// Unset (zero) fields of in keep the stored values; a nil assessment in
// keeps the stored assessment.
func (e Employee) Merge(in Employee) Employee {
	out := e
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Department != "" {
		out.Department = in.Department
	}
	if in.Title != "" {
		out.Title = in.Title
	}
	if in.HireYear != 0 {
		out.HireYear = in.HireYear
	}
	if in.TenureYears != 0 {
		out.TenureYears = in.TenureYears
	}
	if in.PerformanceRating != 0 {
		out.PerformanceRating = in.PerformanceRating
	}
	if in.Compensation != 0 {
		out.Compensation = in.Compensation
	}
	if in.Age != 0 {
		out.Age = in.Age
	}
	if in.JobLevel != 0 {
		out.JobLevel = in.JobLevel
	}
	if in.Satisfaction != 0 {
		out.Satisfaction = in.Satisfaction
	}
	if in.Overtime {
		out.Overtime = true
	}
	if in.MaritalStatus != "" {
		out.MaritalStatus = in.MaritalStatus
	}
	if in.BusinessTravel != "" {
		out.BusinessTravel = in.BusinessTravel
	}
	if in.Assessment != nil {
		a := *in.Assessment
		out.Assessment = &a
	}
	return out
}
