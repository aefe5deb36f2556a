// Package logging provides structured logging for fwscope.
//
// This package wraps a global zap logger with convenience functions. Logging
// is silent by default so that command output stays clean; set
// FWSCOPE_LOG_LEVEL (or pass --log-level) to see what the analysis passes do.
//
// # Log Levels
//
//   - Debug: Detailed debugging info (raw control-block bytes, skipped DIEs)
//   - Info: Normal operations (file loaded, symbol and DWARF counts)
//   - Warn: Non-fatal issues (DWARF build failed, no loadable segments)
//   - Error: Fatal issues
//
// # Structured Logging
//
//	logging.Info("Target selected",
//	    zap.String("target", "STM32F407VGTx"),
//	    zap.Int("regions", 3),
//	)
//
// Analysis passes report through LogParse and LogParseFailure so every pass
// logs the same field names:
//
//	logging.LogParse("symbols", path, zap.Int("count", len(symbols)))
//	logging.LogParseFailure("dwarf", path, err)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Logs go to stderr in console format.
package logging
