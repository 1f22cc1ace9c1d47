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

// Package tracing wires optional OpenTelemetry spans around launch phases.
//
// Tracing is off unless asked for. ZENLAUNCH_TRACE=stdout prints finished
// spans to stderr; OTEL_EXPORTER_OTLP_ENDPOINT ships them to a collector over
// OTLP, using gRPC when OTEL_EXPORTER_OTLP_PROTOCOL is "grpc" and HTTP
// otherwise. With neither set every span is a no-op.
//
//	provider, err := tracing.Setup(ctx, tracing.FromEnv(os.LookupEnv, version))
//	if err != nil {
//	    return err
//	}
//	defer provider.Shutdown(context.Background())
//
//	ctx, span := provider.Tracer().Start(ctx, "launch")
//	defer span.End()
package tracing
