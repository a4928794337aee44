package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/reten/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewDefaults(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
		convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
		convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
		convey.So(cfg.PlanMaxTokens, convey.ShouldEqual, 2048)
		convey.So(cfg.DBPath, convey.ShouldEqual, "reten.db")
		convey.So(cfg.JitterSeed, convey.ShouldEqual, 0)
	})
}
