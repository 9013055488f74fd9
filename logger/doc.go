// Package logger provides structured logging for batchkit using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields. Library code takes a
// *Logger through an option and falls back to Nop, so nothing is printed
// unless the caller asks for it.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "batchkit").WithComponent("batch")
//	log.Info("pipeline started", logger.Fields("batches", 10, "workers", 4))
package logger
