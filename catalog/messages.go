package catalog

import (
	"fmt"
	"math/rand"
	"regexp"

	"github.com/dimonomid/cxmocklogs/record"
	"github.com/juju/errors"
)

type Message struct {
	Severity record.Severity

	// Template is the message text; it may contain placeholders like
	// "{pool_size}", see Placeholders.
	Template string

	// Apps restricts the message to the given applications; empty means that
	// any application can log it.
	Apps []string

	// Upstream marks failures of an upstream call; such ERROR records get
	// the upstream fields in their error details.
	Upstream bool
}

var (
	dbApps    = []string{"database", "user-service", "payment-service"}
	cacheApps = []string{"redis", "user-service", "web-frontend"}
	authApps  = []string{"user-service", "web-frontend"}
	meshApps  = []string{"istio-system"}
)

var Messages = []Message{
	// INFO {{{
	{Severity: record.SeverityInfo, Template: "Request processed successfully (duration: {latency_ms}ms)"},
	{Severity: record.SeverityInfo, Template: "Health check passed"},
	{Severity: record.SeverityInfo, Template: "Service started successfully"},
	{Severity: record.SeverityInfo, Template: "Configuration loaded"},
	{Severity: record.SeverityInfo, Template: "Pod started successfully"},
	{Severity: record.SeverityInfo, Template: "Database connection established (connection_pool_size: {pool_size})", Apps: dbApps},
	{Severity: record.SeverityInfo, Template: "Cache hit for key session:{request_id}", Apps: cacheApps},
	{Severity: record.SeverityInfo, Template: "User authenticated successfully", Apps: authApps},
	{Severity: record.SeverityInfo, Template: "Payment processed (request_id: {request_id})", Apps: []string{"payment-service"}},
	{Severity: record.SeverityInfo, Template: "Order created", Apps: []string{"payment-service", "web-frontend"}},
	{Severity: record.SeverityInfo, Template: "Metrics collected", Apps: []string{"monitoring", "logging"}},
	{Severity: record.SeverityInfo, Template: "Certificate renewed", Apps: []string{"cert-manager"}},
	{Severity: record.SeverityInfo, Template: "Service mesh configuration applied", Apps: meshApps},
	{Severity: record.SeverityInfo, Template: "Load balancer health check passed", Apps: []string{"kube-system"}},
	// }}}

	// WARN {{{
	{Severity: record.SeverityWarn, Template: "High memory usage detected (usage: {percent}%)"},
	{Severity: record.SeverityWarn, Template: "Service response time elevated (p99: {latency_ms}ms)"},
	{Severity: record.SeverityWarn, Template: "Retry attempt failed (attempt: {retry_count})"},
	{Severity: record.SeverityWarn, Template: "Configuration drift detected"},
	{Severity: record.SeverityWarn, Template: "Pod restart detected"},
	{Severity: record.SeverityWarn, Template: "Network latency increased"},
	{Severity: record.SeverityWarn, Template: "Rate limit approaching (current: {percent}%)", Apps: []string{"web-frontend", "user-service", "payment-service", "istio-system"}},
	{Severity: record.SeverityWarn, Template: "Slow database query detected (connection_pool_size: {pool_size})", Apps: dbApps},
	{Severity: record.SeverityWarn, Template: "Connection pool nearly exhausted (connection_pool_size: {pool_size})", Apps: dbApps},
	{Severity: record.SeverityWarn, Template: "Cache miss rate high", Apps: cacheApps},
	{Severity: record.SeverityWarn, Template: "Certificate expires soon (days_left: {days})", Apps: []string{"cert-manager", "istio-system"}},
	{Severity: record.SeverityWarn, Template: "Disk space running low (usage: {percent}%)", Apps: []string{"database", "monitoring", "logging"}},
	// }}}

	// ERROR {{{
	{Severity: record.SeverityError, Template: "Service unavailable", Upstream: true},
	{Severity: record.SeverityError, Template: "Upstream service unreachable", Upstream: true},
	{Severity: record.SeverityError, Template: "Internal server error"},
	{Severity: record.SeverityError, Template: "Connection timeout (timeout: {timeout}s)"},
	{Severity: record.SeverityError, Template: "DNS resolution failed"},
	{Severity: record.SeverityError, Template: "Pod failed to start"},
	{Severity: record.SeverityError, Template: "Resource quota exceeded"},
	{Severity: record.SeverityError, Template: "Network policy violation"},
	{Severity: record.SeverityError, Template: "TLS handshake failed"},
	{Severity: record.SeverityError, Template: "Database connection failed (connection_pool_size: {pool_size})", Apps: dbApps},
	{Severity: record.SeverityError, Template: "Database query timeout (connection_pool_size: {pool_size})", Apps: dbApps},
	{Severity: record.SeverityError, Template: "Authentication failed", Apps: authApps},
	{Severity: record.SeverityError, Template: "Payment processing failed (request_id: {request_id})", Apps: []string{"payment-service"}},
	{Severity: record.SeverityError, Template: "Certificate validation failed", Apps: []string{"cert-manager", "istio-system", "web-frontend"}},
	{Severity: record.SeverityError, Template: "Service mesh configuration error", Apps: meshApps},
	{Severity: record.SeverityError, Template: "Load balancer health check failed", Apps: []string{"kube-system"}},
	{Severity: record.SeverityError, Template: "Cache connection lost", Apps: []string{"redis", "user-service"}},
	{Severity: record.SeverityError, Template: "Service discovery failed", Apps: []string{"kube-system", "istio-system"}},
	// }}}
}

// MessagesFor returns all messages which the application may log with the
// given severity, in catalog order.
func MessagesFor(appName string, severity record.Severity) []*Message {
	var ret []*Message
	for i := range Messages {
		msg := &Messages[i]
		if msg.Severity != severity {
			continue
		}

		if !msg.allowedFor(appName) {
			continue
		}

		ret = append(ret, msg)
	}

	return ret
}

func (m *Message) allowedFor(appName string) bool {
	if len(m.Apps) == 0 {
		return true
	}

	for _, a := range m.Apps {
		if a == appName {
			return true
		}
	}

	return false
}

// Placeholders maps placeholder names to functions generating a random
// plausible value.
var Placeholders = map[string]func(rng *rand.Rand) string{
	"pool_size": func(rng *rand.Rand) string {
		return fmt.Sprint(randRange(rng, 5, 50))
	},
	"timeout": func(rng *rand.Rand) string {
		return fmt.Sprint(randRange(rng, 5, 30))
	},
	"percent": func(rng *rand.Rand) string {
		return fmt.Sprint(randRange(rng, 80, 95))
	},
	"latency_ms": func(rng *rand.Rand) string {
		return fmt.Sprint(randRange(rng, 12, 4800))
	},
	"retry_count": func(rng *rand.Rand) string {
		return fmt.Sprint(randRange(rng, 1, 5))
	},
	"days": func(rng *rand.Rand) string {
		return fmt.Sprint(randRange(rng, 1, 14))
	},
	"request_id": func(rng *rand.Rand) string {
		return RandomHex(rng, 12)
	},
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// PlaceholderNames returns names of all placeholders used in the template.
func PlaceholderNames(template string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}

	return names
}

// Expand substitutes all placeholders in the template, left to right.
func Expand(template string, rng *rand.Rand) (string, error) {
	var unknown string
	ret := placeholderRe.ReplaceAllStringFunc(template, func(ph string) string {
		name := ph[1 : len(ph)-1]
		gen, ok := Placeholders[name]
		if !ok {
			if unknown == "" {
				unknown = name
			}
			return ph
		}

		return gen(rng)
	})

	if unknown != "" {
		return "", errors.Errorf("unknown placeholder {%s} in %q", unknown, template)
	}

	return ret, nil
}

// randRange returns a random int in [min, max].
func randRange(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

const hexDigits = "0123456789abcdef"

// RandomHex returns n random lowercase hex digits.
func RandomHex(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = hexDigits[rng.Intn(len(hexDigits))]
	}

	return string(b)
}
