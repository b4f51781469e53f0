package logger

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Global logger - accessible from anywhere. No-op until Init is called.
var Log = zap.NewNop().Sugar()

// StatusChan carries short status lines to the TUI status bar.
var StatusChan = make(chan string, 16)

// Init sets up the file logger - call this from main.
// The terminal belongs to the TUI, so nothing is written to stdout.
func Init(filename string, verbose bool) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     14, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		level,
	)

	Log = zap.New(core, zap.AddCaller()).Sugar()
	Log.Debug("Logger initialized")
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}

// Screen prints a colored line for the non-interactive commands.
func Screen(text string, c *color.Color) {
	if c == nil {
		c = color.New(color.Reset)
	}
	c.Println(text)
}

// Status hands a message to the TUI without ever blocking the caller.
func Status(text string) {
	select {
	case StatusChan <- text:
	default:
		Log.Debugw("status dropped", "status", text)
	}
}
