package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"socialauth/cfg"
	"socialauth/pkg/authflow"
	"socialauth/pkg/cache"
	"socialauth/pkg/idgen"
	"socialauth/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Otel (optional; skipped when no collector endpoint is set)
	// ============
	if config.Observability.OTLPEndpoint != "" {
		shutdownOtel, err := initOtel(context.Background(), &config.Observability, zlogger)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOtel(ctx); err != nil {
				log.Printf("failed to shutdown OpenTelemetry: %v", err)
			}
		}()
	}

	// ============
	// Cache (backs state tokens and session summaries)
	// ============
	redisAddr := config.RedisConfig.Host + ":" + config.RedisConfig.Port
	redis := cache.NewRedisCache(redisAddr, config.RedisConfig.Password)

	// ============
	// Flow manager
	// ============
	ids, err := idgen.NewSnowflakeGenerator(1)
	if err != nil {
		log.Fatal(err)
	}

	manager := authflow.NewManager(
		authflow.NewStateStore(redis),
		authflow.NewSessionStore(redis),
		ids,
		zlogger.Component("authflow"),
		authflow.WithStateTTL(time.Duration(config.StateTTLMinutes)*time.Minute),
		authflow.WithSessionTTL(time.Duration(config.SessionTTLMinutes)*time.Minute),
	)

	wc := config.WeChatConfig
	wechatOpts := []authflow.Option{
		authflow.WithLogger(zlogger.Component("wechat")),
		authflow.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	}
	if wc.DefaultScope != "" {
		wechatOpts = append(wechatOpts, authflow.WithDefaultScope(wc.DefaultScope))
	}
	if wc.UIDField != "" {
		wechatOpts = append(wechatOpts, authflow.WithUIDField(wc.UIDField))
	}

	wechat, err := authflow.NewWeChat(wc.AppID, wc.AppSecret, wc.RedirectURL, wechatOpts...)
	if err != nil {
		log.Fatal(err)
	}
	manager.Register(wechat)

	// ============
	// HTTP
	// ============
	r := gin.Default()
	if config.Observability.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware(config.Observability.ServiceName))
		r.Use(traceLoggerMiddleware(zlogger))
	}

	authflow.RegisterRoutes(r, manager)

	addr := fmt.Sprintf(":%s", config.AppPort)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// traceLoggerMiddleware attaches trace and span IDs to request logs.
func traceLoggerMiddleware(log logger.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			log.Info("request completed",
				logger.Field{Key: "trace_id", Value: span.SpanContext().TraceID().String()},
				logger.Field{Key: "span_id", Value: span.SpanContext().SpanID().String()},
				logger.Field{Key: "status", Value: c.Writer.Status()},
				logger.Field{Key: "method", Value: c.Request.Method},
				logger.Field{Key: "path", Value: c.Request.URL.Path},
			)
		}
	}
}

// initOtel initializes OpenTelemetry tracing and metrics with an OTLP
// gRPC exporter.
func initOtel(ctx context.Context, config *cfg.ObservabilityConfig, log logger.Client) (func(context.Context) error, error) {
	conn, err := grpc.NewClient(
		config.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	log.Info("OpenTelemetry initialized",
		logger.Field{Key: "otlp_endpoint", Value: config.OTLPEndpoint},
	)

	shutdown := func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown failed: %w", err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown failed: %w", err))
		}
		if len(errs) > 0 {
			return fmt.Errorf("otel shutdown errors: %v", errs)
		}
		return nil
	}

	return shutdown, nil
}
