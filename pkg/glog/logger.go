// Package glog 全局结构化日志，基于 zap，文件输出由 lumberjack 切割
package glog

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerValue  atomic.Pointer[zap.Logger]
	sugaredValue atomic.Pointer[zap.SugaredLogger]
	atomicLevel  = zap.NewAtomicLevel()
)

func init() {
	// 默认只输出到控制台，避免未初始化时在工作目录生成日志文件
	cfg := DefaultConfig()
	cfg.Path = ""
	Init(cfg)
}

// Init 初始化全局 logger，cfg 为 nil 时忽略
func Init(cfg *Config) {
	if cfg == nil {
		return
	}
	atomicLevel.SetLevel(parseLevel(cfg.Level))
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "M",
		LevelKey:       "L",
		TimeKey:        "T",
		CallerKey:      "C",
		NameKey:        "N",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000Z0700"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := make([]zapcore.Core, 0, 2)
	if cfg.Path != "" {
		w := newWriter(cfg.Path, cfg.File)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), atomicLevel))
	}
	if cfg.PrintConsole {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), atomicLevel))
	}
	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.AddCallerSkip(1),
	)
	loggerValue.Store(logger)
	sugaredValue.Store(logger.Sugar())
}

// Stop 同步缓冲日志
func Stop() {
	if l := loggerValue.Load(); l != nil {
		_ = l.Sync()
	}
}

// SetLogLevel 动态调整日志级别
func SetLogLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

// GetLevel 当前日志级别
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

// Logger 返回底层 zap.Logger
func Logger() *zap.Logger {
	return loggerValue.Load()
}

func Debug(msg string, fields ...zap.Field) {
	if l := loggerValue.Load(); l != nil {
		l.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if l := loggerValue.Load(); l != nil {
		l.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if l := loggerValue.Load(); l != nil {
		l.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if l := loggerValue.Load(); l != nil {
		l.Error(msg, fields...)
	}
}

// Fatal 输出日志后退出进程
func Fatal(msg string, fields ...zap.Field) {
	if l := loggerValue.Load(); l != nil {
		l.Fatal(msg, fields...)
	}
}

func Debugf(template string, args ...interface{}) {
	if sl := sugaredValue.Load(); sl != nil {
		sl.Debugf(template, args...)
	}
}

func Infof(template string, args ...interface{}) {
	if sl := sugaredValue.Load(); sl != nil {
		sl.Infof(template, args...)
	}
}

func Warnf(template string, args ...interface{}) {
	if sl := sugaredValue.Load(); sl != nil {
		sl.Warnf(template, args...)
	}
}

func Errorf(template string, args ...interface{}) {
	if sl := sugaredValue.Load(); sl != nil {
		sl.Errorf(template, args...)
	}
}
