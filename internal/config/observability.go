package config

// TraceConfig holds OTLP trace export configuration.
//
// Traces are exported to a local OTLP collector over HTTP; the collector
// handles authentication, buffering, and forwarding to the backend.
type TraceConfig struct {
	// Endpoint is the collector OTLP HTTP endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment"`
	// ServiceName is the service name on exported spans (default: statehouse)
	ServiceName string `mapstructure:"service_name"`
}
