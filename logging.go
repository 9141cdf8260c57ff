package app

import "go.uber.org/zap"

// NewLogger builds the process logger. Development mode uses the console
// encoder with colored levels; anything else emits production JSON.
// The logger is passed down explicitly, never installed as a global.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
