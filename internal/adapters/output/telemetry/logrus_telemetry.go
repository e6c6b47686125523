package telemetry

import (
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure LogrusTelemetry implements the Telemetry port
var _ output.Telemetry = (*LogrusTelemetry)(nil)

// LogrusTelemetry struct - Output adapter recording engine events as
// structured log lines. Fire-and-forget: never blocks, never fails.
type LogrusTelemetry struct {
	logger *logrus.Logger
}

// New func
func New() *LogrusTelemetry {
	return &LogrusTelemetry{logger: logrus.StandardLogger()}
}

// Record - Logs one named event with its attributes as fields
func (t *LogrusTelemetry) Record(event string, attributes map[string]interface{}) {
	fields := make(logrus.Fields, len(attributes)+1)
	for key, value := range attributes {
		fields[key] = value
	}
	fields["event"] = event
	t.logger.WithFields(fields).Info("telemetry")
}
