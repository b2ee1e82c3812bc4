package actor

import (
	"encoding/json"

	"github.com/go-viper/mapstructure/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// RefExtID ActorRef 在 msgpack 中的扩展类型号
const RefExtID int8 = 1

func init() {
	msgpack.RegisterExt(RefExtID, (*ActorRef)(nil))
}

// RefJSONKey JSON 形式中保存 URL 的键，通用解码后据此识别引用
const RefJSONKey = "$actor"

type refWire struct {
	URL     string   `msgpack:"u" json:"$actor" mapstructure:"$actor"`
	Class   string   `msgpack:"c" json:"class" mapstructure:"class"`
	Tell    []string `msgpack:"t" json:"tell" mapstructure:"tell"`
	Ask     []string `msgpack:"a" json:"ask" mapstructure:"ask"`
	TellRef []string `msgpack:"tr,omitempty" json:"tellRef,omitempty" mapstructure:"tellRef"`
	AskRef  []string `msgpack:"ar,omitempty" json:"askRef,omitempty" mapstructure:"askRef"`
}

func (r *ActorRef) wire() *refWire {
	return &refWire{
		URL:     r.url,
		Class:   r.class,
		Tell:    r.tell,
		Ask:     r.ask,
		TellRef: r.tellRef,
		AskRef:  r.askRef,
	}
}

func (r *ActorRef) load(w *refWire) {
	r.url = w.URL
	r.class = w.Class
	r.tell = w.Tell
	r.ask = w.Ask
	r.tellRef = w.TellRef
	r.askRef = w.AskRef
	r.channel = nil
}

// MarshalMsgpack 只编码身份和能力，通道由接收方重新绑定
func (r *ActorRef) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(r.wire())
}

func (r *ActorRef) UnmarshalMsgpack(b []byte) error {
	var w refWire
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return err
	}
	r.load(&w)
	return nil
}

// MarshalJSON 编码为 {"$actor": url, "class": ..., "tell": [...], ...}
func (r *ActorRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func (r *ActorRef) UnmarshalJSON(b []byte) error {
	var w refWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.load(&w)
	return nil
}

// RefFromMap 把解码到 any 的 JSON 形式还原为未绑定通道的引用，
// 不含 RefJSONKey 的 map 返回 false
func RefFromMap(m map[string]any) (*ActorRef, bool) {
	if _, ok := m[RefJSONKey].(string); !ok {
		return nil, false
	}
	var w refWire
	if err := mapstructure.Decode(m, &w); err != nil {
		return nil, false
	}
	r := &ActorRef{}
	r.load(&w)
	return r, true
}
