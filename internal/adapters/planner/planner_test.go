package planner_test

import (
	"testing"

	"github.com/okian/reten/internal/adapters/planner"
	"github.com/okian/reten/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildPrompt(t *testing.T) {
	Convey("Given a profile and assessment", t, func() {
		p := model.Profile{
			Name:              "Sofia Mancini",
			Title:             "Data Engineer",
			Department:        "Engineering",
			TenureYears:       1.8,
			PerformanceRating: 3.6,
			Compensation:      56000,
		}
		prompt := planner.BuildPrompt(p, 72, model.LevelHigh)

		Convey("Then every profile field is embedded", func() {
			So(prompt, ShouldContainSubstring, "Sofia Mancini")
			So(prompt, ShouldContainSubstring, "Data Engineer")
			So(prompt, ShouldContainSubstring, "Engineering")
			So(prompt, ShouldContainSubstring, "1.8")
			So(prompt, ShouldContainSubstring, "3.6")
			So(prompt, ShouldContainSubstring, "56000")
			So(prompt, ShouldContainSubstring, "72")
			So(prompt, ShouldContainSubstring, "HIGH")
		})

		Convey("Then the required JSON contract is spelled out", func() {
			So(prompt, ShouldContainSubstring, `"riskScore"`)
			So(prompt, ShouldContainSubstring, `"riskLevel"`)
			So(prompt, ShouldContainSubstring, `"retentionPlan"`)
			So(prompt, ShouldContainSubstring, "ONLY with a valid JSON object")
		})

		Convey("Then the five plan sections are requested", func() {
			for _, section := range []string{
				"Strategic Overview", "Immediate Actions", "Long-Term Development",
				"Compensation Adjustments", "Recognition Strategy",
			} {
				So(prompt, ShouldContainSubstring, section)
			}
		})
	})
}
