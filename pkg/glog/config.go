package glog

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config glog 配置
type Config struct {
	// Path 日志文件路径，为空时不写文件
	Path string `json:"path" yaml:"path" mapstructure:"path"`
	// Level 日志级别: debug, info, warn, error, dpanic, panic, fatal
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	// PrintConsole 是否同时输出到控制台
	PrintConsole bool `json:"printConsole" yaml:"printConsole" mapstructure:"printConsole"`
	// File 文件切割配置（lumberjack）
	File FileConfig `json:"file" yaml:"file" mapstructure:"file"`
}

// FileConfig 文件日志切割配置
type FileConfig struct {
	MaxSize    int  `json:"maxSize" yaml:"maxSize" mapstructure:"maxSize"`          // 单文件最大 MB
	MaxBackups int  `json:"maxBackups" yaml:"maxBackups" mapstructure:"maxBackups"` // 最多保留文件数
	MaxAge     int  `json:"maxAge" yaml:"maxAge" mapstructure:"maxAge"`             // 保留天数
	Compress   bool `json:"compress" yaml:"compress" mapstructure:"compress"`
	LocalTime  bool `json:"localTime" yaml:"localTime" mapstructure:"localTime"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Path:         "./logs/gactor.log",
		Level:        "info",
		PrintConsole: true,
		File: FileConfig{
			MaxSize:    500,
			MaxBackups: 100,
			MaxAge:     30,
			LocalTime:  true,
		},
	}
}

// parseLevel 解析日志级别字符串，未知级别按 info 处理
func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
