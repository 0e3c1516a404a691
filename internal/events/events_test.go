package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/resume-reader/internal/types"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	messages   []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.messages = append(f.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestNewResumeEvent_MasksEmail(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	record := &types.ResumeRecord{
		ID:       "abc",
		FileName: "cv.pdf",
		Email:    "johndoe@example.com",
		Phone:    "5551234567",
		Skills:   []string{"Go", "SQL"},
	}

	event := NewResumeEvent(record, at)

	assert.Equal(t, "abc", event.ID)
	assert.Equal(t, "jo***@example.com", event.Email)
	assert.Equal(t, 2, event.SkillsCount)
	assert.Equal(t, time.UTC, event.ParsedAt.Location())

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "johndoe")
	assert.NotContains(t, string(data), "5551234567")
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"resume_events:topic"}, ch.declared)

	event := ResumeEvent{ID: "id-1", FileName: "cv.pdf", SkillsCount: 3, ParsedAt: time.Now().UTC()}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.messages, 1)
	msg := ch.messages[0]
	assert.Equal(t, Exchange, msg.exchange)
	assert.Equal(t, RoutingKeyParsed, msg.key)
	assert.Equal(t, "application/json", msg.msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), msg.msg.DeliveryMode)
	assert.Equal(t, "id-1", msg.msg.MessageId)

	var decoded ResumeEvent
	require.NoError(t, json.Unmarshal(msg.msg.Body, &decoded))
	assert.Equal(t, 3, decoded.SkillsCount)
}

func TestAMQPPublisher_Errors(t *testing.T) {
	t.Run("declare failure closes channel", func(t *testing.T) {
		ch := &fakeChannel{declareErr: errors.New("forbidden")}
		_, err := newAMQPPublisher(ch, nil)
		require.Error(t, err)
		assert.True(t, ch.closed)
	})

	t.Run("publish failure is wrapped", func(t *testing.T) {
		ch := &fakeChannel{publishErr: errors.New("channel closed")}
		p, err := newAMQPPublisher(ch, nil)
		require.NoError(t, err)

		err = p.Publish(context.Background(), ResumeEvent{ID: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel closed")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := newAMQPPublisher(ch, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, p.Publish(ctx, ResumeEvent{}), context.Canceled)
		assert.Empty(t, ch.messages)
	})
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, nil)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), ResumeEvent{}))
	assert.NoError(t, p.Close())
}
