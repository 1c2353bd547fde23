package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

type logrusLogger struct{}

func (logrusLogger) Error(msg string) {
	logrus.Error(msg)
}

func (logrusLogger) Infof(msg string, args ...interface{}) {
	logrus.Infof(msg, args...)
}

func (logrusLogger) Debugf(msg string, args ...interface{}) {
	logrus.Debugf(msg, args...)
}

// InitTracerFromEnv installs a jaeger tracer configured by the JAEGER_* variables as the
// global tracer. Without JAEGER_SAMPLER_TYPE every trace is sampled.
func InitTracerFromEnv(serviceName string) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	if cfg.Sampler.Type == "" {
		cfg.Sampler.Type = jaeger.SamplerTypeConst
		cfg.Sampler.Param = 1
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(logrusLogger{}), jaegercfg.Metrics(metrics.NullFactory))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("tracer of service %s initialized, disabled = %v", cfg.ServiceName, cfg.Disabled)
	return closer, nil
}
