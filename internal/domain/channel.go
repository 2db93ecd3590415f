package domain

// ChannelMetrics is one row of the analytics snapshot: a channel name unique
// within the batch plus arbitrary named numeric metrics. Rows are not retained
// between scoring calls.
type ChannelMetrics struct {
	Name    string             `json:"name"`
	Metrics map[string]float64 `json:"metrics"`
}

// Metric returns the named metric value, or 0 when the channel does not report it.
func (c ChannelMetrics) Metric(name string) float64 {
	return c.Metrics[name]
}

// Classification buckets a composite score against the configured thresholds.
type Classification string

const (
	StatusPromote Classification = "promote"
	StatusRetire  Classification = "retire"
	StatusWatch   Classification = "watch"
)

// Override directives let operators force or suppress automated flags.
type Override string

const (
	OverrideForcePromote  Override = "force_promote"
	OverrideForceRetire   Override = "force_retire"
	OverrideIgnorePromote Override = "ignore_promote"
	OverrideIgnoreRetire  Override = "ignore_retire"
)

// Valid reports whether the directive is one the engine understands.
func (o Override) Valid() bool {
	switch o {
	case OverrideForcePromote, OverrideForceRetire, OverrideIgnorePromote, OverrideIgnoreRetire:
		return true
	}
	return false
}
