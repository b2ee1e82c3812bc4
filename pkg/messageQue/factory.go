// Package messageQue 主机间传输的提供者注册表
package messageQue

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/factory"
	"github.com/dzm2020/gactor/pkg/messageQue/iface"
)

var (
	fac = factory.New[iface.IMessageQue]()
)

func GetFactoryMgr() *factory.Manager[iface.IMessageQue] {
	return fac
}

// Register 注册提供者，通常在提供者包的 init 中调用
func Register(name string, creator factory.Creator[iface.IMessageQue]) error {
	return fac.Register(name, creator)
}

// Config 传输配置
type Config struct {
	Type   string         `json:"type" yaml:"type" mapstructure:"type"`       // 提供者类型：local、tcp、nats
	Config map[string]any `json:"config" yaml:"config" mapstructure:"config"` // 提供者配置
}

// NewFromConfig 根据配置创建消息队列实例
func NewFromConfig(config Config) (iface.IMessageQue, error) {
	creator, ok := fac.Get(config.Type)
	if !ok {
		return nil, errs.ErrUnknownTransportType(config.Type)
	}
	return creator(config.Config)
}

// DecodeConfig 把原始配置解到提供者的配置结构，支持 "3s" 形式的时长和弱类型
func DecodeConfig(raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
