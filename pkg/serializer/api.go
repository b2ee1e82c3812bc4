// Package serializer 消息编解码
package serializer

import "fmt"

// ISerializer 编解码器
type ISerializer interface {
	Marshal(msg interface{}) ([]byte, error)
	Unmarshal(data []byte, msg interface{}) error
	Name() string
}

var (
	Json    ISerializer = new(jsonCodec)
	MsgPack ISerializer = new(msgPackCodec)
	PB      ISerializer = new(pbCodec)
	Struct  ISerializer = new(structCodec)
)

var codecs = map[string]ISerializer{
	Json.Name():    Json,
	MsgPack.Name(): MsgPack,
	PB.Name():      PB,
	Struct.Name():  Struct,
}

// Get 按名字取编解码器
func Get(name string) (ISerializer, error) {
	if c, ok := codecs[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("serializer: unknown codec %q", name)
}
