package glog

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newWriter 根据配置创建日志文件写入器，未设置的字段使用默认值
func newWriter(filename string, cfg FileConfig) io.Writer {
	def := DefaultConfig().File
	if cfg.MaxSize == 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = def.MaxBackups
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		LocalTime:  cfg.LocalTime,
		Compress:   cfg.Compress,
	}
}
