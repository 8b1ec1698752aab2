package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	want := Message{Type: "scan", Body: []byte("rec-1")}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-msgs:
		if got.Type != want.Type || string(got.Body) != string(want.Body) {
			t.Errorf("got %v, want %v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	q := NewInMemory(0) // unbuffered, no consumer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Publish(ctx, Message{Type: "scan"}); err == nil {
		t.Error("Publish() on cancelled context = nil, want error")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Message
	}{
		{name: "typed", in: "scan|rec-42", want: Message{Type: "scan", Body: []byte("rec-42")}},
		{name: "empty body", in: "scan|", want: Message{Type: "scan", Body: []byte("")}},
		{name: "no separator", in: "garbage", want: Message{Body: []byte("garbage")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deserialize(tt.in)
			if got.Type != tt.want.Type || string(got.Body) != string(tt.want.Body) {
				t.Errorf("deserialize(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}

	msg := Message{Type: "scan", Body: []byte("rec-7")}
	if got := deserialize(serialize(msg)); got.Type != msg.Type || string(got.Body) != string(msg.Body) {
		t.Errorf("round trip = %+v, want %+v", got, msg)
	}
}
