package server

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/internal/config"
	"github.com/grossamos/throwscape/internal/metrics"
	"github.com/grossamos/throwscape/internal/protocol"
)

const instrumentationName = "github.com/grossamos/throwscape/internal/server"

// ConnHandler serves exactly one request per connection and closes it.
type ConnHandler struct {
	metrics *metrics.ServerMetrics
	tracer  trace.Tracer
	conns   metric.Int64Counter
}

// NewConnHandler builds a handler. m may be nil. Tracer and meter come from the global otel
// providers, which are no-ops unless the telemetry component is running.
func NewConnHandler(m *metrics.ServerMetrics) *ConnHandler {
	conns, err := otel.Meter(instrumentationName).Int64Counter("throwscape.connections",
		metric.WithDescription("Connections served, by outcome."))
	if err != nil {
		otel.Handle(err)
	}
	return &ConnHandler{
		metrics: m,
		tracer:  otel.Tracer(instrumentationName),
		conns:   conns,
	}
}

// ServeConn reads one request from conn, writes the response and closes conn. Parse errors
// either produce a 400 or drop the connection silently; nothing is retried.
func (h *ConnHandler) ServeConn(ctx context.Context, conn net.Conn, cfg *config.Config) {
	start := time.Now()
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx, span := h.tracer.Start(ctx, "serve_conn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("net.peer.addr", conn.RemoteAddr().String())))
	defer func() {
		_ = conn.Close()
		h.metrics.Closed(time.Since(start))
		span.End()
	}()

	req, err := protocol.ReadRequest(conn, cfg)
	if err != nil {
		kind := protocol.ErrorKind(err)
		h.metrics.ParseError(kind)
		span.RecordError(err)
		span.SetAttributes(attribute.String("throwscape.parse_error", kind))

		resp, ok := protocol.ErrorResponse(req, err)
		if !ok {
			h.metrics.Aborted()
			h.record(ctx, "aborted")
			span.SetStatus(codes.Error, kind)
			debugf(ctx, cfg, "connection dropped", zap.String("kind", kind), zap.Error(err))
			return
		}
		debugf(ctx, cfg, "bad request", zap.String("kind", kind), zap.Error(err))
		h.send(ctx, span, conn, resp, cfg)
		return
	}

	span.SetAttributes(
		attribute.String("http.request.method", req.Method.String()),
		attribute.String("http.target", req.Target.String()),
		attribute.String("network.protocol.version", req.Version.String()),
	)
	h.send(ctx, span, conn, protocol.BuildResponse(req, cfg), cfg)
}

func (h *ConnHandler) send(ctx context.Context, span trace.Span, conn net.Conn, resp *protocol.Response, cfg *config.Config) {
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status.Code()))
	if err := resp.Send(conn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		h.record(ctx, "send_failed")
		debugf(ctx, cfg, "send failed", zap.Int("status", resp.Status.Code()), zap.Error(err))
		return
	}
	var body int64
	if !resp.HeadOnly() {
		body = resp.ContentLength()
	}
	h.metrics.Response(resp.Status.Code(), body)
	h.record(ctx, "responded")
}

func (h *ConnHandler) record(ctx context.Context, outcome string) {
	if h.conns != nil {
		h.conns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// debugf logs per-connection failures only when the debug switch is on.
func debugf(ctx context.Context, cfg *config.Config, msg string, fields ...zap.Field) {
	if cfg != nil && cfg.Debug {
		logging.Warn(ctx, msg, fields...)
	}
}
