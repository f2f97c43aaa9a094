// Package catalog holds the fixed tables the generator samples from:
// applications with their containers, message templates, error codes.
package catalog

type Application struct {
	Name string

	// Containers are the valid subsystem names for this application.
	Containers []string

	// Namespace, Tier, Version and Environment end up in kubernetes metadata
	// and labels of every record of this application.
	Namespace   string
	Tier        string
	Version     string
	Environment string

	// ErrorRate is the share of problematic (WARN or ERROR) records for the
	// application when per-application severities are used.
	ErrorRate float64

	// Weight is the relative frequency of the application.
	Weight int
}

var Applications = []Application{
	{
		Name:        "web-frontend",
		Containers:  []string{"nginx", "app"},
		Namespace:   "frontend",
		Tier:        "frontend",
		Version:     "v2.4.1",
		Environment: "production",
		ErrorRate:   0.15,
		Weight:      1,
	},
	{
		Name:        "user-service",
		Containers:  []string{"app", "istio-proxy"},
		Namespace:   "backend",
		Tier:        "backend",
		Version:     "v1.8.3",
		Environment: "production",
		ErrorRate:   0.12,
		Weight:      1,
	},
	{
		Name:        "payment-service",
		Containers:  []string{"app", "istio-proxy"},
		Namespace:   "backend",
		Tier:        "backend",
		Version:     "v3.1.0",
		Environment: "production",
		ErrorRate:   0.18,
		Weight:      1,
	},
	{
		Name:        "kube-system",
		Containers:  []string{"coredns", "aws-load-balancer-controller"},
		Namespace:   "kube-system",
		Tier:        "system",
		Version:     "v1.11.1",
		Environment: "production",
		ErrorRate:   0.08,
		Weight:      1,
	},
	{
		Name:        "monitoring",
		Containers:  []string{"prometheus", "grafana"},
		Namespace:   "monitoring",
		Tier:        "system",
		Version:     "v2.45.0",
		Environment: "production",
		ErrorRate:   0.05,
		Weight:      1,
	},
	{
		Name:        "database",
		Containers:  []string{"postgres"},
		Namespace:   "database",
		Tier:        "database",
		Version:     "v15.3.0",
		Environment: "production",
		ErrorRate:   0.20,
		Weight:      1,
	},
	{
		Name:        "redis",
		Containers:  []string{"redis"},
		Namespace:   "cache",
		Tier:        "cache",
		Version:     "v7.0.12",
		Environment: "production",
		ErrorRate:   0.10,
		Weight:      1,
	},
	{
		Name:        "logging",
		Containers:  []string{"fluent-bit"},
		Namespace:   "logging",
		Tier:        "system",
		Version:     "v2.1.8",
		Environment: "production",
		ErrorRate:   0.07,
		Weight:      1,
	},
	{
		Name:        "istio-system",
		Containers:  []string{"istio-proxy", "pilot"},
		Namespace:   "istio-system",
		Tier:        "system",
		Version:     "v1.18.2",
		Environment: "production",
		ErrorRate:   0.09,
		Weight:      1,
	},
	{
		Name:        "cert-manager",
		Containers:  []string{"cert-manager", "webhook"},
		Namespace:   "cert-manager",
		Tier:        "system",
		Version:     "v1.12.3",
		Environment: "production",
		ErrorRate:   0.06,
		Weight:      1,
	},
}

// ApplicationByName returns nil if there's no such application.
func ApplicationByName(name string) *Application {
	for i := range Applications {
		if Applications[i].Name == name {
			return &Applications[i]
		}
	}

	return nil
}

// HasContainer returns whether the container is valid for the application.
func HasContainer(appName, container string) bool {
	app := ApplicationByName(appName)
	if app == nil {
		return false
	}

	for _, c := range app.Containers {
		if c == container {
			return true
		}
	}

	return false
}

var ErrorCodes = []string{"CONNECTION_REFUSED", "TIMEOUT", "AUTH_FAILED"}

var UpstreamServices = []string{"user-service", "payment-service", "inventory-service"}

var UpstreamStatusCodes = []int{502, 503, 504}

// Cloud defaults for the aws metadata block.
const (
	DefaultRegion         = "us-west-2"
	DefaultClusterName    = "production-eks-cluster"
	DefaultFargateProfile = "default-profile"
)
