// Package log provides the logging abstraction shared by the producer and
// renderer halves of liveplot.
//
// Library packages accept a [Logger] and never construct one themselves.
// A zerolog-backed adapter is provided for real use and a no-op logger for
// tests:
//
//	logger := log.NewZerologAdapter()
//	logger = logger.With(log.Component("sync"))
//
//	quiet := log.NewNoopLogger()
package log
