package tcp

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/panjf2000/gnet/v2"
)

// 帧格式：| 4 字节总长 | 2 字节主题长 | 主题 | 数据 |，总长不含自身
const (
	lenSize     = 4
	subjectSize = 2
)

var (
	errFrameTooLarge  = errors.New("tcp: frame too large")
	errSubjectTooLong = errors.New("tcp: subject too long")
)

// checkFrame 发送前校验帧长度，超限的帧会让对端断开连接
func checkFrame(subject string, data []byte, maxFrame int) error {
	if len(subject) > math.MaxUint16 {
		return errSubjectTooLong
	}
	if subjectSize+len(subject)+len(data) > maxFrame {
		return errFrameTooLarge
	}
	return nil
}

func encode(subject string, data []byte) []byte {
	total := subjectSize + len(subject) + len(data)
	buf := make([]byte, lenSize+total)
	offset := 0
	binary.BigEndian.PutUint32(buf[offset:], uint32(total))
	offset += lenSize
	binary.BigEndian.PutUint16(buf[offset:], uint16(len(subject)))
	offset += subjectSize
	offset += copy(buf[offset:], subject)
	copy(buf[offset:], data)
	return buf
}

type frame struct {
	subject string
	data    []byte
}

// decode 读出缓冲区中所有完整的帧，不完整的部分留在缓冲区
func decode(reader gnet.Reader, maxFrame int) (frames []frame, err error) {
	for {
		var buf []byte
		if reader.InboundBuffered() < lenSize {
			return
		}
		buf, err = reader.Peek(lenSize)
		if err != nil {
			return
		}
		l := int(binary.BigEndian.Uint32(buf))
		if l > maxFrame || l < subjectSize {
			return frames, errFrameTooLarge
		}
		total := lenSize + l
		if reader.InboundBuffered() < total {
			return
		}
		buf, err = reader.Peek(total)
		if err != nil {
			return
		}
		offset := lenSize
		sl := int(binary.BigEndian.Uint16(buf[offset:]))
		offset += subjectSize
		if offset+sl > total {
			return frames, errFrameTooLarge
		}
		f := frame{subject: string(buf[offset : offset+sl])}
		offset += sl
		f.data = make([]byte, total-offset)
		copy(f.data, buf[offset:])
		frames = append(frames, f)

		_, _ = reader.Discard(total)
	}
}
