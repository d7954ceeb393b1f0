package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"cssb/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

var levels = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"normal": zapcore.InfoLevel,
}

// PanicLogName returns location of the crash output file which accompanies
// file log.
func (conf *LoggingConfig) PanicLogName() string {
	return filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log")
}

// FileLogActive reports whether file log (and crash output) is produced for
// this run. Debug report always forces it.
func (conf *LoggingConfig) FileLogActive(rpt *Report) bool {
	_, ok := levels[conf.FileLogger.Level]
	return ok || rpt != nil
}

// Prepare returns configured program logger: console output split between
// stdout and stderr plus optional file log. When debug report is requested
// file log is written at debug level from scratch and goes into the report
// together with crash output.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	stdout, stderr := conf.consoleCores()

	file, redirected, err := conf.fileCore(rpt)
	if err != nil {
		return nil, err
	}

	log := zap.New(zapcore.NewTee(stderr, stdout, file), zap.AddCaller())
	if len(redirected) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return ec
}

// consoleCores returns core for messages below error level going to stdout
// and core for errors going to stderr.
func (conf *LoggingConfig) consoleCores() (zapcore.Core, zapcore.Core) {
	lowest, ok := levels[conf.ConsoleLogger.Level]
	if !ok {
		return zapcore.NewNopCore(), zapcore.NewNopCore()
	}
	stdout := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout)), zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lowest <= lvl && lvl < zapcore.ErrorLevel
		}))
	// selector errors are wrapped several times, do not show verbose form
	stderr := zapcore.NewCore(newEncoder(consoleEncoderConfig(os.Stderr)), zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return stdout, stderr
}

func openLog(fname, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == "append" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.OpenFile(fname, flags, 0644)
}

// fileCore returns file log core and, if configured destination was not
// accessible, name of the temporary file used instead.
func (conf *LoggingConfig) fileCore(rpt *Report) (zapcore.Core, string, error) {
	if !conf.FileLogActive(rpt) {
		return zapcore.NewNopCore(), "", nil
	}

	level, mode := levels[conf.FileLogger.Level], conf.FileLogger.Mode
	if rpt != nil {
		level, mode = zapcore.DebugLevel, "overwrite"
	}

	// capture panic log if possible, quietly ignore if we cannot
	if ef, err := openLog(conf.PanicLogName(), mode); err == nil {
		debug.SetCrashOutput(ef, debug.CrashOptions{})
		rpt.Store("panic.log", ef.Name())
		ef.Close()
	}

	var redirected string
	f, err := openLog(conf.FileLogger.Destination, mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
			return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
		redirected = f.Name()
	}
	rpt.Store(misc.GetAppName()+".log", f.Name())

	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(enc, zapcore.Lock(f), zap.NewAtomicLevelAt(level)), redirected, nil
}

// consoleEnc drops verbose error details (multierr lists, wrapping chains)
// keeping only error text.
type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	flat := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			f.Interface = errors.New(f.Interface.(error).Error())
		}
		flat = append(flat, f)
	}
	return c.Encoder.EncodeEntry(ent, flat)
}
