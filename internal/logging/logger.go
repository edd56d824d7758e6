// Package logging builds the *zap.Logger the rest of the module uses.
// Packages take the concrete *zap.Logger type; there is no narrower logging
// interface.
package logging

import "go.uber.org/zap"

// New builds a production zap.Logger, or a development one with more
// readable console output when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Noop returns a logger that discards everything, for tests and contexts
// where no logging destination is configured.
func Noop() *zap.Logger {
	return zap.NewNop()
}
