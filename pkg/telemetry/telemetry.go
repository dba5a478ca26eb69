// Package telemetry provides the engine's structured logger. The teacher
// (nick199910-SolRoute/main.go) logs through the standard library's log
// package with emoji-prefixed Printf calls; go.uber.org/zap already rides
// along as a transitive dependency of github.com/gagliardetto/solana-go's
// own logging stack, so this package promotes it to a direct, explicit
// dependency and gives every trigger point of spec.md §7 one structured
// log line instead of an ad hoc Printf.
package telemetry

import (
	"go.uber.org/zap"
)

// New builds a production logger in non-development environments and a
// human-readable console logger otherwise.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	return cfg.Build()
}

// Noop returns a logger that discards everything, for tests.
func Noop() *zap.Logger {
	return zap.NewNop()
}
