// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	start         time.Time
	parser        *css.Parser
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Parser returns selector parser logging to program log. It is created on
// first use, so log must be set up before.
func (e *LocalEnv) Parser() *css.Parser {
	if e.parser == nil {
		e.parser = css.NewParser(e.Log)
	}
	return e.parser
}

// Format returns requested output format.
func (e *LocalEnv) Format() config.OutputFmt {
	if e.Cfg == nil {
		return config.OutputFmtText
	}
	return e.Cfg.Output.Format
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
