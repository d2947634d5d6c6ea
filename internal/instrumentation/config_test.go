package instrumentation

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServiceName != "workspace-mcp" {
		t.Errorf("ServiceName = %v, want workspace-mcp", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("Enabled = false, want true")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("MetricsExporter = %v, want prometheus", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("TracingExporter = %v, want none", config.TracingExporter)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "sampling rate out of range",
			mutate:  func(c *Config) { c.TraceSamplingRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "unknown metrics exporter",
			mutate:  func(c *Config) { c.MetricsExporter = "statsd" },
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter",
			mutate:  func(c *Config) { c.TracingExporter = "jaeger" },
			wantErr: true,
		},
		{
			name:    "otlp metrics without endpoint",
			mutate:  func(c *Config) { c.MetricsExporter = ExporterOTLP },
			wantErr: true,
		},
		{
			name: "otlp metrics with endpoint",
			mutate: func(c *Config) {
				c.MetricsExporter = ExporterOTLP
				c.OTLPEndpoint = "localhost:4318"
			},
		},
		{
			name:    "otlp tracing without endpoint",
			mutate:  func(c *Config) { c.TracingExporter = ExporterOTLP },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDisabledProviderIsNoOp(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false

	provider, err := NewProvider(t.Context(), config)
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	if provider.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}
	if provider.Metrics() == nil {
		t.Fatal("Metrics() = nil, want no-op recorder")
	}

	// No-op recorder must tolerate recording calls.
	provider.Metrics().RecordTokenRefresh(t.Context(), StatusSuccess)
	provider.Metrics().RecordWaitlistSignup(t.Context(), StatusError)
}
