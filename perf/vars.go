package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency  = metric.NewHistogram("1m1s")
	VectorsSent      = metric.NewCounter("10s1s")
	FramesSent       = metric.NewCounter("10s1s")
	FramesDelivered  = metric.NewCounter("10s1s")
	FramesLost       = metric.NewCounter("10s1s")
	MalformedFrames  = metric.NewCounter("10s1s")
	TrafficForwarded = metric.NewCounter("10s1s")
	TrafficDropped   = metric.NewCounter("10s1s")
	ProbesLaunched   = metric.NewCounter("10s1s")
	ProbesCompleted  = metric.NewCounter("10s1s")
	ProbesExpired    = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("felt:VectorsSent/s", VectorsSent)
	expvar.Publish("felt:FramesSent/s", FramesSent)
	expvar.Publish("felt:FramesDelivered/s", FramesDelivered)
	expvar.Publish("felt:FramesLost/s", FramesLost)
	expvar.Publish("felt:MalformedFrames/s", MalformedFrames)
	expvar.Publish("felt:TrafficForwarded/s", TrafficForwarded)
	expvar.Publish("felt:TrafficDropped/s", TrafficDropped)
	expvar.Publish("felt:ProbesLaunched/s", ProbesLaunched)
	expvar.Publish("felt:ProbesCompleted/s", ProbesCompleted)
	expvar.Publish("felt:ProbesExpired/s", ProbesExpired)
	expvar.Publish("felt:DispatchLatency (µs)", DispatchLatency)
}
