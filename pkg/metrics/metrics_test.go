package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When created on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it registers without collision", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When created with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			)
			So(manager, ShouldNotBeNil)
			So(manager.namespace, ShouldEqual, "test")
			So(manager.subsystem, ShouldEqual, "unit")
		})
	})
}

func TestPackageLevelRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the record helpers do not panic", func() {
			So(func() {
				RecordPrediction("remote")
				RecordPrediction("fallback")
				RecordFallback()
				RecordPlanGeneration("fallback")
				RecordSessionExpiry()
				RecordInvalidInput()
				RecordRemoteCallLatency("predict", 12.5)
				RecordRemoteCallError("plan")
				UpdateStoreRecords(7)
				RecordStoreWrite()
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(8)
				RecordWorkerError()
				RecordHTTPRequest("predict", "POST", "200")
				RecordHTTPRequestDuration("predict", "POST", "200", 42)
				RecordErrorByComponent("orchestrator", "remote_unavailable")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("Then the registry gathers the engine families", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
