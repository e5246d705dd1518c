// Package audit records an append-only trail of changes to subscriber records.
//
// Each create, edit and usage attempt becomes one JSON line in audit.log under
// the configured directory. Rejected usage increments are kept with status
// "denied", so the trail shows quota hits that never reached the record store.
//
//	logger, err := audit.NewFileLogger(audit.DefaultFileLoggerConfig("/var/log/subdesk"))
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//
//	reg := records.NewRegistry(catalog, store, records.WithAuditor(logger))
//
// The file is rotated once it reaches MaxSize; rotated files are named
// audit-<timestamp>.log and only the newest MaxFiles are kept.
package audit
