package eventbus

import "testing"

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := New[int]()
	var got []int
	b.Subscribe(func(n int) { got = append(got, n) })
	b.Subscribe(func(n int) { got = append(got, n*10) })

	b.Publish(3)

	if len(got) != 2 {
		t.Fatalf("expected 2 callbacks invoked, got %d: %v", len(got), got)
	}
}

func TestUnsubscribeStopsFutureEvents(t *testing.T) {
	b := New[string]()
	count := 0
	tok := b.Subscribe(func(string) { count++ })

	b.Publish("a")
	b.Unsubscribe(tok)
	b.Publish("b")

	if count != 1 {
		t.Fatalf("expected exactly 1 delivery before unsubscribe, got %d", count)
	}
	if b.Len() != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe, got %d", b.Len())
	}
}

func TestUnsubscribeDuringPublishDoesNotDeadlock(t *testing.T) {
	b := New[int]()
	var tok Token
	tok = b.Subscribe(func(int) { b.Unsubscribe(tok) })
	b.Publish(1)
	if b.Len() != 0 {
		t.Fatalf("expected subscriber to have removed itself, got %d remaining", b.Len())
	}
}
