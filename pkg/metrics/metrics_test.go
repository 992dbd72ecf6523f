package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithLatencyBuckets([]float64{1, 5, 10}),
				WithRefreshInterval(5*time.Second),
				WithRegistry(registry),
			)

			Convey("Then metrics are registered with the configured names", func() {
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
				manager.qteStarted.Inc()
				manager.httpRequestDuration.WithLabelValues("/input", "POST", "200").Observe(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make(map[string]int)
				for _, f := range families {
					if f.GetName() == "test_session_http_request_duration_milliseconds" {
						names[f.GetName()] = len(f.GetMetric()[0].GetHistogram().GetBucket())
					} else {
						names[f.GetName()] = 0
					}
				}
				So(names, ShouldContainKey, "test_session_started_total")
				So(names["test_session_http_request_duration_milliseconds"], ShouldEqual, 3)
			})
		})

		Convey("When empty options are passed defaults are kept", func() {
			manager := NewManager(
				WithNamespace(""),
				WithLatencyBuckets(nil),
				WithRefreshInterval(0),
				WithRegistry(nil),
				WithRegistry(prometheus.NewRegistry()),
			)
			So(manager.namespace, ShouldEqual, "qte")
			So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			So(manager.latencyBuckets, ShouldResemble, defaultLatencyBuckets)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Resolutions are counted per result", func() {
			before := testutil.ToFloat64(globalManager.qteResolved.WithLabelValues(ResultTimeout))
			perfectBefore := testutil.ToFloat64(globalManager.qtePerfect)

			RecordQTEResolved(ResultTimeout, false, 2*time.Second)
			RecordQTEResolved(ResultSuccess, true, 1800*time.Millisecond)

			So(testutil.ToFloat64(globalManager.qteResolved.WithLabelValues(ResultTimeout)), ShouldEqual, before+1)
			So(testutil.ToFloat64(globalManager.qtePerfect), ShouldEqual, perfectBefore+1)
		})

		Convey("Gauges take the last value", func() {
			UpdateActiveQTEs(3)
			So(testutil.ToFloat64(globalManager.qteActive), ShouldEqual, 3)
			UpdateActiveQTEs(0)
			So(testutil.ToFloat64(globalManager.qteActive), ShouldEqual, 0)
		})

		Convey("Input presses are split by consumption", func() {
			before := testutil.ToFloat64(globalManager.inputPresses.WithLabelValues("false"))
			RecordInputPress(false)
			So(testutil.ToFloat64(globalManager.inputPresses.WithLabelValues("false")), ShouldEqual, before+1)
		})

		Convey("Recorders never panic", func() {
			So(func() {
				RecordQTEStarted()
				RecordQTECancelled()
				RecordInputDuplicate()
				RecordInputRateLimited()
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.5)
				RecordHTTPRequest("/input", "POST", "200")
				RecordHTTPRequestDuration("/input", "POST", "200", 1.5)
				UpdateStreamClients(2)
				RecordErrorByComponent("session", "backpressure")
				RecordErrorByEndpoint("/input", "POST", "rate_limited")
			}, ShouldNotPanic)
		})

		Convey("The registry exposes the qte namespace", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "qte_session_"), ShouldBeTrue)
			}
		})
	})
}

func TestSystemCollector(t *testing.T) {
	Convey("Given a manager with a short refresh interval", t, func() {
		m := NewManager(
			WithRegistry(prometheus.NewRegistry()),
			WithRefreshInterval(time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			m.Collect(ctx)
			close(done)
		}()
		cancel()
		<-done

		So(testutil.ToFloat64(m.systemGoroutineCount), ShouldBeGreaterThan, 0)
		So(testutil.ToFloat64(m.systemMemoryUsage), ShouldBeGreaterThan, 0)
	})
}

func TestValidateResult(t *testing.T) {
	Convey("Result labels are validated", t, func() {
		So(ValidateResult(ResultSuccess), ShouldBeNil)
		So(ValidateResult(ResultWrongInput), ShouldBeNil)
		So(ValidateResult(ResultTimeout), ShouldBeNil)
		So(ValidateResult("cancelled"), ShouldEqual, ErrUnknownResult)
	})
}
