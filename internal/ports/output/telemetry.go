package output

// Telemetry interface - Output port
// Fire-and-forget event recording. Implementations must never block the
// caller and never surface failures to the engine.
type Telemetry interface {
	// Record logs one named event with its attributes.
	Record(event string, attributes map[string]interface{})
}
