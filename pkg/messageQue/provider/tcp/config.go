package tcp

import (
	"fmt"
	"time"
)

// Config TCP 传输配置
type Config struct {
	Listen      string        `json:"listen" yaml:"listen" mapstructure:"listen"`                // 监听地址，如 127.0.0.1:7000
	DialTimeout time.Duration `json:"dialTimeout" yaml:"dialTimeout" mapstructure:"dialTimeout"` // 出站连接超时
	KeepAlive   time.Duration `json:"keepAlive" yaml:"keepAlive" mapstructure:"keepAlive"`
	Multicore   bool          `json:"multicore" yaml:"multicore" mapstructure:"multicore"`
	MaxFrame    int           `json:"maxFrame" yaml:"maxFrame" mapstructure:"maxFrame"` // 单帧最大字节数
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("tcp: listen cannot be empty")
	}
	if c.MaxFrame <= 0 {
		return fmt.Errorf("tcp: maxFrame must be positive")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		DialTimeout: 3 * time.Second,
		KeepAlive:   30 * time.Second,
		MaxFrame:    16 << 20,
	}
}
