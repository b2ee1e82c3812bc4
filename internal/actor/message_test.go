package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dzm2020/gactor/internal/errs"
)

func TestMessageValidate(t *testing.T) {
	reply := NewMailbox()
	var nilMsg *Message
	assert.ErrorIs(t, nilMsg.Validate(), errs.ErrMessageIsNil)
	assert.NoError(t, NewTell("m", nil).Validate())
	assert.ErrorIs(t, NewTell("", nil).Validate(), errs.ErrMessageMethodIsEmpty)
	assert.NoError(t, NewAsk("m", nil, reply, "").Validate())
	assert.ErrorIs(t, NewAsk("m", nil, nil, "").Validate(), errs.ErrResponseChannelIsNil)
	assert.ErrorIs(t, NewFuture("m", nil, nil, "c").Validate(), errs.ErrResponseChannelIsNil)
	assert.NoError(t, NewStop().Validate())
	assert.Error(t, (&Message{Type: MessageType(42), Method: "m"}).Validate())
}

func TestNewResponse(t *testing.T) {
	reply := NewMailbox()
	ask := NewResponse(NewAsk("m", nil, reply, ""), Result{Value: 1})
	assert.Equal(t, MsgAskResponse, ask.Type)
	assert.Empty(t, ask.CorrelationID)
	assert.Empty(t, ask.Method)
	assert.Nil(t, ask.Params)

	fut := NewResponse(NewFuture("m", []any{1}, reply, "cid"), Result{Value: 2})
	assert.Equal(t, MsgFutureResponse, fut.Type)
	assert.Equal(t, "cid", fut.CorrelationID)
	assert.Equal(t, 2, fut.Result.Value)

	assert.Nil(t, NewResponse(NewTell("m", nil), Result{}))
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "FUTURE_RESPONSE", MsgFutureResponse.String())
	assert.Equal(t, "MessageType(9)", MessageType(9).String())
	assert.True(t, MsgAsk.IsRequest())
	assert.False(t, MsgStop.IsRequest())
	assert.True(t, MsgAskResponse.IsResponse())
}
