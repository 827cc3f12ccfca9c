package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var initOnce sync.Once

//Init builds the process-wide logger and installs it as the zap global.
//In dev mode levels are colored and timestamps short; otherwise the output
//is production JSON. The stdlib log is redirected into the same stream so
//third-party prints do not bypass it.
func Init(dev bool) {
	initOnce.Do(func() {
		var encoder zapcore.Encoder
		if dev {
			cfg := zap.NewDevelopmentEncoderConfig()
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(cfg)
		} else {
			encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		}

		core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.InfoLevel)
		log := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
		zap.ReplaceGlobals(log)

		if _, err := zap.RedirectStdLogAt(log, zapcore.InfoLevel); err != nil {
			panic(err)
		}
	})
}

//Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	Init(true)
	zap.S().Infof(format, args...)
}

//Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	Init(true)
	zap.S().Warnf(format, args...)
}

//Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	Init(true)
	zap.S().Errorf(format, args...)
}

//Panicf logs a formatted message at panic level and then panics. Internal
//consistency violations in the library go through here: the process must not
//continue with a tree that silently broke an invariant.
func Panicf(format string, args ...interface{}) {
	Init(true)
	zap.S().Panicf(format, args...)
}

//Fatalf logs a formatted message and exits with a non-zero status.
func Fatalf(format string, args ...interface{}) {
	Init(true)
	zap.S().Fatalf(format, args...)
}

//Sync flushes buffered log entries. Call it on process shutdown.
func Sync() {
	_ = zap.S().Sync()
}
