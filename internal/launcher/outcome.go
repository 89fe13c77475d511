package launcher

import "github.com/SwonDev/Stacklume/internal/shell"

// Outcome is the single terminal result of a launch attempt. Exactly one
// Outcome is delivered per Launcher, no matter how the attempt ends.
type Outcome struct {
	// URL is the ready server address. Empty when the launch failed.
	URL string

	// Failure carries the diagnostic payload when the launch failed.
	// Nil when the launch succeeded.
	Failure *shell.Failure
}

// Ready reports whether the launch reached a healthy server.
func (o Outcome) Ready() bool {
	return o.Failure == nil
}

// Kind returns a short label for the outcome, used for logging and metrics.
func (o Outcome) Kind() string {
	if o.Failure == nil {
		return "ready"
	}
	return o.Failure.Kind.String()
}
