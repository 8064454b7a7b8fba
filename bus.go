package consolekit

import "sync"

// Bus is a named-topic publish/subscribe channel between renderers.
//
// Delivery is synchronous and best-effort: Publish invokes every callback
// currently registered for the topic, in subscription order, before
// returning. There is no queue - a subscriber registered after a publish
// completes never sees that publish. Publishing to a topic with zero
// subscribers is a no-op.
//
// Each subscription is keyed by a caller-supplied subscriber id. Subscribing
// again with the same (topic, id) pair replaces the previous callback in
// place, so a renderer that re-registers on every refresh is delivered to
// exactly once.
type Bus struct {
	mu     sync.Mutex
	topics map[string][]subscription
}

type subscription struct {
	id string
	fn func(args ...any)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string][]subscription)}
}

// Subscribe registers fn for (topic, id). A later call with the same pair
// replaces the previous callback, keeping its original position in the
// delivery order.
func (b *Bus) Subscribe(topic, id string, fn func(args ...any)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i := range subs {
		if subs[i].id == id {
			subs[i].fn = fn
			return
		}
	}
	b.topics[topic] = append(subs, subscription{id: id, fn: fn})
}

// Unsubscribe removes the callback registered for (topic, id). Unknown
// pairs are ignored.
func (b *Bus) Unsubscribe(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i := range subs {
		if subs[i].id == id {
			b.topics[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish synchronously invokes every subscriber of topic in subscription
// order, passing args. It never fails; zero subscribers is a no-op.
func (b *Bus) Publish(topic string, args ...any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(args...)
	}
}

// Topic is a typed handle over a bus topic name. It pairs the string topic
// with its payload type so publishers and subscribers agree at compile time
// instead of through an untyped channel.
type Topic[T any] struct {
	Name string
}

// NewTopic creates a typed topic handle for name.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{Name: name}
}

// Publish sends v to every subscriber of the topic.
func Publish[T any](b *Bus, t Topic[T], v T) {
	b.Publish(t.Name, v)
}

// Subscribe registers fn for the topic under the given subscriber id.
// Payloads published through the untyped Bus API that do not match T are
// dropped rather than delivered mistyped.
func Subscribe[T any](b *Bus, t Topic[T], id string, fn func(T)) {
	b.Subscribe(t.Name, id, func(args ...any) {
		if len(args) != 1 {
			return
		}
		if v, ok := args[0].(T); ok {
			fn(v)
		}
	})
}

// Unauthorized is the payload of TopicUnauthorized, published by any
// renderer whose operation was rejected for missing approval.
type Unauthorized struct {
	// Subject is the protected resource identifier (e.g. "C.1234"). When
	// non-empty the approval dialog is scoped to it.
	Subject string

	// Message is the server-supplied denial message.
	Message string

	// Renderer optionally names the renderer that was blocked, so its
	// AccessOk hook can replay the action after a grant.
	Renderer string
}

// SelectionChanged is the payload of TopicSelectionChanged, published after
// an approval grant (and by navigation) so dependent renderers refresh.
type SelectionChanged struct {
	Resource string
	Reason   string
}

// Well-known topics.
var (
	// TopicUnauthorized carries access denials to the ACL controller.
	TopicUnauthorized = NewTopic[Unauthorized]("unauthorized")

	// TopicSelectionChanged notifies renderers that the selected resource
	// (or its granted reason) changed.
	TopicSelectionChanged = NewTopic[SelectionChanged]("selection_changed")

	// TopicMessages carries user-visible status and error lines.
	TopicMessages = NewTopic[string]("messages")
)
