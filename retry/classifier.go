package retry

import "strings"

// Classifier decides whether a failure is transient and worth retrying.
// Implementations receive the captured error text of one attempt.
type Classifier interface {
	Transient(detail string) bool
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(detail string) bool

// Transient calls f.
func (f ClassifierFunc) Transient(detail string) bool { return f(detail) }

// capacityMarkers are the provider's capacity-exhaustion signals. A shape
// with no physical host capacity is always a transient condition.
var capacityMarkers = []string{
	"out of capacity",
	"out of host capacity",
	"outofcapacity",
	"outofhostcapacity",
}

// networkMarkers cover transient transport failures. Auth failures are
// deliberately absent: retrying a rejected credential never helps.
var networkMarkers = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"timed out",
	"temporary failure",
	"tls handshake",
	"no such host",
	"could not connect",
	"429",
	"toomanyrequests",
}

// SubstringClassifier matches error text against a fixed marker list,
// case-insensitively.
//
// Substring matching on English error prose is fragile: it breaks the day
// the provider rewords a message. It survives here only as the fallback
// for tool output that carries no structured error code; anything with a
// real code should get a dedicated Classifier instead.
type SubstringClassifier struct {
	markers []string
}

// NewSubstringClassifier builds a classifier over the given markers.
func NewSubstringClassifier(markers ...string) *SubstringClassifier {
	return &SubstringClassifier{markers: markers}
}

// Transient reports whether any marker occurs in the detail text.
func (c *SubstringClassifier) Transient(detail string) bool {
	lower := strings.ToLower(detail)
	for _, marker := range c.markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Capacity matches only capacity-exhaustion errors. This is the narrow
// policy for apply: any other apply failure could repeat a destructive
// operation and must not be retried.
func Capacity() *SubstringClassifier {
	return NewSubstringClassifier(capacityMarkers...)
}

// Network matches transient transport failures, for read-only or
// idempotent commands such as init.
func Network() *SubstringClassifier {
	return NewSubstringClassifier(networkMarkers...)
}

// Any matches capacity and network failures alike.
func Any() *SubstringClassifier {
	markers := make([]string, 0, len(capacityMarkers)+len(networkMarkers))
	markers = append(markers, capacityMarkers...)
	markers = append(markers, networkMarkers...)
	return NewSubstringClassifier(markers...)
}
