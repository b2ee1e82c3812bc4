package serializer

import "github.com/vmihailenco/msgpack/v5"

type msgPackCodec struct {
}

func (p *msgPackCodec) Name() string {
	return "msgpack"
}

func (p *msgPackCodec) Unmarshal(data []byte, msg interface{}) error {
	return msgpack.Unmarshal(data, msg)
}

func (p *msgPackCodec) Marshal(msg interface{}) ([]byte, error) {
	return msgpack.Marshal(msg)
}
