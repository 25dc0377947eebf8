// Package logging provides structured logging for the arcticspa tools.
//
// This package wraps the zap logger with convenience functions used
// throughout the client, scanner, and simulator. Logging is silent by
// default so the CLI output stays clean; set ARCTICSPA_LOG_LEVEL to turn
// it on.
//
// # Log Levels
//
//   - Debug: hex dumps, per-frame decoding, per-probe discovery events
//   - Info: connections, polls, scan summaries
//   - Warn: discarded read cycles, dropped probes
//   - Error: startup failures, dead connections
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Controller found",
//	    zap.String("host", "192.168.1.42"),
//	)
//
// Raw protocol bytes can be dumped at debug level:
//
//	logging.LogRawBytes("frame received", data)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
