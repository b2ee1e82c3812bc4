package serializer

import "encoding/json"

type jsonCodec struct {
}

func (j *jsonCodec) Name() string {
	return "json"
}

func (j *jsonCodec) Marshal(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

func (j *jsonCodec) Unmarshal(data []byte, msg interface{}) error {
	return json.Unmarshal(data, msg)
}
