package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Topic names a notification channel.
type Topic string

const (
	TopicSchema   Topic = "schema"
	TopicFormData Topic = "formData"
	TopicUIState  Topic = "uiState"
)

// Listener receives the current state snapshot for the topic it subscribed
// to: schema.Schema, map[string]any or UIState.
type Listener func(snapshot any) error

type subscription struct {
	id       int
	listener Listener
}

type subscribers struct {
	next   int
	topics map[Topic][]subscription
	logger *slog.Logger
}

func (s *subscribers) add(topic Topic, fn Listener) func() {
	if s.topics == nil {
		s.topics = make(map[Topic][]subscription)
	}
	s.next++
	id := s.next
	s.topics[topic] = append(s.topics[topic], subscription{id: id, listener: fn})

	return func() {
		subs := s.topics[topic]
		for i, sub := range subs {
			if sub.id == id {
				s.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// notify delivers a fresh snapshot to each listener. Failures are logged and
// never stop delivery to later listeners.
func (s *subscribers) notify(topic Topic, snapshot func() any) {
	subs := append([]subscription(nil), s.topics[topic]...)
	for _, sub := range subs {
		if err := deliver(sub.listener, snapshot()); err != nil {
			s.logger.LogAttrs(context.Background(), slog.LevelError, "state subscriber failed",
				slog.String("topic", string(topic)),
				slog.Int("subscriber", sub.id),
				slog.String("error", err.Error()),
			)
		}
	}
}

func deliver(fn Listener, snapshot any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(snapshot)
}

// OnSchema adapts a typed schema listener.
func OnSchema(fn func(schema.Schema) error) Listener {
	return func(snapshot any) error {
		s, _ := snapshot.(schema.Schema)
		return fn(s)
	}
}

// OnFormData adapts a typed form data listener.
func OnFormData(fn func(map[string]any) error) Listener {
	return func(snapshot any) error {
		data, _ := snapshot.(map[string]any)
		return fn(data)
	}
}

// OnUIState adapts a typed UI state listener.
func OnUIState(fn func(UIState) error) Listener {
	return func(snapshot any) error {
		ui, _ := snapshot.(UIState)
		return fn(ui)
	}
}
