// Package printer provides receipt sink implementations. The physical
// ESC/POS device driver lives outside this module; these sinks cover
// development and headless installs.
package printer

import "go.uber.org/zap"

// LogSink writes the rendered receipt to the application log. It never
// fails, which makes it the default device for development setups.
type LogSink struct{}

func (LogSink) Print(text string, total float64) error {
	zap.S().Infof("printing receipt (total %.2f)\n%s", total, text)
	return nil
}

// NullSink discards receipts.
type NullSink struct{}

func (NullSink) Print(string, float64) error { return nil }
