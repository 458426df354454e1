package metrics

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// GRPCStreamServerInterceptor returns a stream interceptor that records stream counts and
// durations with method and code labels.
func GRPCStreamServerInterceptor(meterProvider metric.MeterProvider, namespace string) grpc.StreamServerInterceptor {
	meter := meterProvider.Meter(namespace)

	passthrough := func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, ss)
	}

	streamCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_grpc_streams_total", namespace),
		metric.WithDescription("Total number of gRPC streams"),
		metric.WithUnit("{stream}"),
	)
	if err != nil {
		return passthrough
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_grpc_stream_duration_seconds", namespace),
		metric.WithDescription("gRPC stream duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return passthrough
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)

		attrs := metric.WithAttributes(
			attribute.String("method", info.FullMethod),
			attribute.String("code", status.Code(err).String()),
		)
		streamCounter.Add(ss.Context(), 1, attrs)
		durationHisto.Record(ss.Context(), time.Since(start).Seconds(), attrs)

		return err
	}
}
