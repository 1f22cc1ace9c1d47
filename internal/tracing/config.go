// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"io"
	"os"
	"strings"
)

// Exporter selects where spans go.
type Exporter string

const (
	ExporterNone     Exporter = "none"
	ExporterStdout   Exporter = "stdout"
	ExporterOTLPHTTP Exporter = "otlp-http"
	ExporterOTLPGRPC Exporter = "otlp-grpc"
)

// Config holds tracing configuration.
type Config struct {
	// Exporter is the span destination.
	Exporter Exporter

	// Endpoint is the collector URL for the OTLP exporters.
	Endpoint string

	// ServiceName identifies this program in traces.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// Writer receives stdout-exporter output (default: os.Stderr, so the
	// agent's own stdout stays clean).
	Writer io.Writer
}

// FromEnv builds a Config from the environment.
func FromEnv(lookup func(string) (string, bool), version string) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Config{
		Exporter:       ExporterNone,
		ServiceName:    "zenlaunch",
		ServiceVersion: version,
	}

	if v, ok := lookup("ZENLAUNCH_TRACE"); ok && strings.EqualFold(strings.TrimSpace(v), "stdout") {
		cfg.Exporter = ExporterStdout
		return cfg
	}

	endpoint, _ := lookup("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
	if endpoint == "" {
		endpoint, _ = lookup("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if endpoint == "" {
		return cfg
	}
	cfg.Endpoint = endpoint

	protocol, _ := lookup("OTEL_EXPORTER_OTLP_PROTOCOL")
	if strings.EqualFold(strings.TrimSpace(protocol), "grpc") {
		cfg.Exporter = ExporterOTLPGRPC
	} else {
		cfg.Exporter = ExporterOTLPHTTP
	}
	return cfg
}

// Enabled reports whether spans are exported anywhere.
func (c Config) Enabled() bool {
	return c.Exporter != "" && c.Exporter != ExporterNone
}
