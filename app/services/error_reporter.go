package services

import (
	"time"

	"github.com/amirphl/leadboard/config"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitErrorReporting enables sentry when a DSN is configured. The returned func flushes pending events.
func InitErrorReporting(cfg config.SentryConfig, deployment config.DeploymentConfig) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      deployment.Environment,
		Release:          deployment.Version,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return func() {}, err
	}

	logrus.WithField("environment", deployment.Environment).Info("sentry error reporting enabled")
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// ReportError forwards err to sentry with tags; a no-op when sentry is not initialised
func ReportError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
