// Package config 节点配置：文件、环境变量与默认值
package config

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/glog"
	"github.com/dzm2020/gactor/pkg/messageQue"
)

// EnvPrefix 环境变量前缀，如 GACTOR_HOST_URL
const EnvPrefix = "GACTOR"

// Config 节点配置
type Config struct {
	Host      HostConfig        `json:"host" yaml:"host" mapstructure:"host"`
	Actor     ActorConfig       `json:"actor" yaml:"actor" mapstructure:"actor"`
	Transport messageQue.Config `json:"transport" yaml:"transport" mapstructure:"transport"`
	Glog      glog.Config       `json:"glog" yaml:"glog" mapstructure:"glog"`
}

type HostConfig struct {
	// URL 主机地址，actor 的 URL 为 <URL>/<id>，如 tcp://127.0.0.1:7000、local://node-1
	URL string `json:"url" yaml:"url" mapstructure:"url"`
	// Codec 主机间消息的编码：msgpack、json 或 pbstruct，互通的主机必须一致
	Codec string `json:"codec" yaml:"codec" mapstructure:"codec"`
}

type ActorConfig struct {
	AskTimeout time.Duration `json:"askTimeout" yaml:"askTimeout" mapstructure:"askTimeout"` // Ask 默认超时
	PendingTTL time.Duration `json:"pendingTTL" yaml:"pendingTTL" mapstructure:"pendingTTL"` // 远程调用应答等待上限
	SlowInvoke time.Duration `json:"slowInvoke" yaml:"slowInvoke" mapstructure:"slowInvoke"` // 慢调用告警阈值，0 关闭
}

// Default 生成默认配置
func Default() *Config {
	return &Config{
		Host: HostConfig{
			URL:   "local://node-1",
			Codec: "msgpack",
		},
		Actor: ActorConfig{
			AskTimeout: 10 * time.Second,
			PendingTTL: time.Minute,
			SlowInvoke: time.Second,
		},
		Transport: messageQue.Config{
			Type:   "local",
			Config: map[string]any{},
		},
		Glog: *glog.DefaultConfig(),
	}
}

// Load 从 yaml/json 文件加载，环境变量覆盖文件，未配置项使用默认值。
// path 为空时只读取环境变量
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	setDefaults(vp, Default())

	if path != "" {
		vp.SetConfigFile(path)
		if err := vp.ReadInConfig(); err != nil {
			return nil, errs.ErrReadConfigFileFailed(err)
		}
	}

	cfg := Default()
	err := vp.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errs.ErrUnmarshalConfigFailed(err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 注册叶子键，AutomaticEnv 只对已知键生效
func setDefaults(vp *viper.Viper, cfg *Config) {
	vp.SetDefault("host.url", cfg.Host.URL)
	vp.SetDefault("host.codec", cfg.Host.Codec)
	vp.SetDefault("actor.askTimeout", cfg.Actor.AskTimeout)
	vp.SetDefault("actor.pendingTTL", cfg.Actor.PendingTTL)
	vp.SetDefault("actor.slowInvoke", cfg.Actor.SlowInvoke)
	vp.SetDefault("transport.type", cfg.Transport.Type)
	vp.SetDefault("glog.path", cfg.Glog.Path)
	vp.SetDefault("glog.level", cfg.Glog.Level)
	vp.SetDefault("glog.printConsole", cfg.Glog.PrintConsole)
}

// Validate 检查必填项
func (c *Config) Validate() error {
	u, err := url.Parse(c.Host.URL)
	if err != nil {
		return errs.ErrInvalidURLReason(c.Host.URL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return errs.ErrInvalidURLReason(c.Host.URL, "want scheme://host")
	}
	if strings.Trim(u.Path, "/") != "" {
		return errs.ErrInvalidURLReason(c.Host.URL, "host url must not have a path")
	}
	if c.Transport.Type == "" {
		return errs.ErrUnknownTransportType("")
	}
	if c.Actor.AskTimeout <= 0 {
		return fmt.Errorf("actor.askTimeout must be positive, got %s", c.Actor.AskTimeout)
	}
	if c.Actor.PendingTTL <= 0 {
		return fmt.Errorf("actor.pendingTTL must be positive, got %s", c.Actor.PendingTTL)
	}
	return nil
}

// Dump 以 yaml 输出当前配置
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
