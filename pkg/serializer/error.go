package serializer

import "errors"

var (
	ErrPBPack    = errors.New("pb marshal: message is nil")
	ErrPBUnPack  = errors.New("pb unmarshal: target is nil")
	ErrNotPBMsg  = errors.New("not a proto message")
	ErrNotObject = errors.New("pbstruct: value is not an object")
)
