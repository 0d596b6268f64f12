// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// metrics.go — optional instrumentation hooks for the codec path.

package gridio

import "time"

// MetricsRecorder receives codec timings. Pass one through WithMetrics to
// observe encode/decode durations and payload sizes; the default discards
// them.
type MetricsRecorder interface {
	RecordEncode(d time.Duration, payloadBytes int)
	RecordDecode(d time.Duration, payloadBytes int)
}

type noopMetrics struct{}

func (noopMetrics) RecordEncode(time.Duration, int) {}
func (noopMetrics) RecordDecode(time.Duration, int) {}
