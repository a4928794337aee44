package risk_test

import (
	"math/rand"
	"testing"

	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the canonical thresholds", t, func() {
		Convey("Then boundaries are inclusive", func() {
			So(risk.Classify(70), ShouldEqual, model.LevelHigh)
			So(risk.Classify(69), ShouldEqual, model.LevelMedium)
			So(risk.Classify(40), ShouldEqual, model.LevelMedium)
			So(risk.Classify(39), ShouldEqual, model.LevelLow)
		})

		Convey("Then the extremes classify", func() {
			So(risk.Classify(0), ShouldEqual, model.LevelLow)
			So(risk.Classify(100), ShouldEqual, model.LevelHigh)
		})

		Convey("Then every score yields the same level on repeat", func() {
			for s := 0; s <= 100; s++ {
				So(risk.Classify(s), ShouldEqual, risk.Classify(s))
			}
		})
	})
}

func TestEstimate(t *testing.T) {
	Convey("Given an estimator with a fixed seed", t, func() {
		est := risk.NewEstimator(risk.WithSeed(1))

		Convey("When scoring a short-tenured low performer on low pay", func() {
			// 50 +20 +15 +10 = 95 before jitter.
			p := model.Profile{Name: "A", TenureYears: 1, PerformanceRating: 2.5, Compensation: 40000}
			for i := 0; i < 50; i++ {
				s := est.Estimate(p)
				So(s, ShouldBeGreaterThanOrEqualTo, 85)
				So(s, ShouldBeLessThanOrEqualTo, 100)
				So(risk.Classify(s), ShouldEqual, model.LevelHigh)
			}
		})

		Convey("When scoring a long-tenured high performer on high pay", func() {
			// 50 -15 -20 = 15 before jitter.
			p := model.Profile{Name: "B", TenureYears: 6, PerformanceRating: 4.5, Compensation: 90000}
			for i := 0; i < 50; i++ {
				s := est.Estimate(p)
				So(s, ShouldBeGreaterThanOrEqualTo, 5)
				So(s, ShouldBeLessThanOrEqualTo, 25)
				So(risk.Classify(s), ShouldEqual, model.LevelLow)
			}
		})

		Convey("When all optional fields are unset", func() {
			// Defaults: tenure 1 (+20), performance 3, compensation 50000 -> 70.
			s := est.Estimate(model.Profile{Name: "C"})
			So(s, ShouldBeGreaterThanOrEqualTo, 60)
			So(s, ShouldBeLessThanOrEqualTo, 80)
		})

		Convey("Then adversarial inputs still land inside [0,100]", func() {
			extreme := []model.Profile{
				{Name: "D", TenureYears: 0.5, PerformanceRating: 0.1, Compensation: 1},
				{Name: "E", TenureYears: 40, PerformanceRating: 5, Compensation: 1e9},
				{Name: "F", TenureYears: 1, PerformanceRating: -3, Compensation: -1},
			}
			for _, p := range extreme {
				for i := 0; i < 20; i++ {
					s := est.Estimate(p)
					So(s, ShouldBeGreaterThanOrEqualTo, 0)
					So(s, ShouldBeLessThanOrEqualTo, 100)
				}
			}
		})
	})

	Convey("Given two estimators with the same injected source", t, func() {
		p := model.Profile{Name: "G", TenureYears: 3, PerformanceRating: 3.5, Compensation: 52000}
		a := risk.NewEstimator(risk.WithRand(rand.New(rand.NewSource(42))))
		b := risk.NewEstimator(risk.WithRand(rand.New(rand.NewSource(42))))

		Convey("Then estimates replay identically", func() {
			for i := 0; i < 10; i++ {
				So(a.Estimate(p), ShouldEqual, b.Estimate(p))
			}
		})
	})
}
