// Package telemetry provides structured logging for clipse.
//
// The package wraps zerolog behind a small Logger type with context
// propagation and domain-specific field helpers (run id, pipeline stage,
// config path).
//
// # Usage
//
// Initialize logging at application startup:
//
//	logger, err := telemetry.NewLogger(telemetry.DefaultLoggingConfig())
//	if err != nil {
//	    os.Exit(1)
//	}
//	ctx = logger.WithContext(ctx)
//
// Retrieve the logger anywhere downstream:
//
//	log := telemetry.FromContext(ctx).WithStage("references")
//	log.Debug("expanding blueprints")
package telemetry
