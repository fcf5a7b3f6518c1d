// Package logging holds the process-wide zap logger.
package logging

import "go.uber.org/zap"

// Log is the shared logger. It discards everything until Init is called.
var Log = zap.NewNop()

// Init replaces Log with a development logger when debug is set, or a
// production (JSON, info level) logger otherwise.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes buffered log entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Log.Sync()
}
