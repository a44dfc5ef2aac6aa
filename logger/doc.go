// Package logger provides structured logging for imageflow using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("evaluator")
//	log.Info("evaluation complete", logger.Fields("computed", 3, "cache_hits", 2))
package logger
