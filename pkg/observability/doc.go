// Package observability provides logging and Prometheus metrics for subdesk.
//
// # Logging
//
// Loggers are plain *logrus.Logger values writing to stderr so they do not
// interleave with menu output:
//
//	logger := observability.NewLogger(observability.ParseLogLevel("debug"), observability.FormatJSON, nil)
//	logger.WithField("subscriber", name).Info("subscriber created")
//
// # Metrics
//
// Metrics live on a private registry. A one-shot CLI has no scrape endpoint, so
// they are written to a file for the node exporter's textfile collector:
//
//	metrics := observability.NewMetrics(nil)
//	metrics.RecordOperation("create", err)
//	metrics.WriteTextfile("/var/lib/node_exporter/subdesk.prom")
package observability
