// bus.go
package bus

import (
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Wildcard tokens accepted in subscription topics.
const (
	SingleLevel = "+"
	MultiLevel  = "#" // must be last
)

// Topic is a sequence of path tokens, e.g. {"hal", "button", "mode"}.
type Topic []string

// T builds a Topic.
func T(tokens ...string) Topic { return Topic(tokens) }

func (t Topic) String() string {
	n := 0
	for _, s := range t {
		n += len(s) + 1
	}
	b := make([]byte, 0, n)
	for i, s := range t {
		if i > 0 {
			b = append(b, '/')
		}
		b = append(b, s...)
	}
	return string(b)
}

// Match reports whether a concrete topic matches a subscription filter.
func (filter Topic) Match(topic Topic) bool {
	for i, tok := range filter {
		if tok == MultiLevel {
			return true
		}
		if i >= len(topic) {
			return false
		}
		if tok != SingleLevel && tok != topic[i] {
			return false
		}
	}
	return len(filter) == len(topic)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	filter Topic
	ch     chan *Message
	conn   *Connection
}

func (s *Subscription) Topic() Topic             { return s.filter }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok string, create bool) *node {
	if c, ok := n.children[tok]; ok {
		return c
	}
	if !create {
		return nil
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	subs *node // subscriptions keyed by filter
	ret  *node // retained messages keyed by concrete topic
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{
		subs: &node{},
		ret:  &node{},
		qLen: queueLen,
	}
}

// deliver never blocks: when the queue is full the oldest message is dropped.
func deliver(sub *Subscription, msg *Message) {
	for {
		select {
		case sub.ch <- msg:
			return
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.subs
	for _, tok := range sub.filter {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	// Replay retained messages matching the filter.
	walkRetained(b.ret, nil, func(topic Topic, m *Message) {
		if sub.filter.Match(topic) {
			deliver(sub, m)
		}
	})
}

func walkRetained(n *node, prefix Topic, fn func(Topic, *Message)) {
	if n.retained != nil {
		fn(prefix, n.retained)
	}
	for tok, c := range n.children {
		walkRetained(c, append(prefix[:len(prefix):len(prefix)], tok), fn)
	}
}

// collect appends every subscription whose filter matches topic[i:].
func collect(n *node, topic Topic, i int, out []*Subscription) []*Subscription {
	if n == nil {
		return out
	}
	if c := n.children[MultiLevel]; c != nil {
		out = append(out, c.subs...)
	}
	if i == len(topic) {
		return append(out, n.subs...)
	}
	out = collect(n.children[topic[i]], topic, i+1, out)
	out = collect(n.children[SingleLevel], topic, i+1, out)
	return out
}

// Publish delivers a message to all matching subscribers.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		n := b.ret
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}

	for _, sub := range collect(b.subs, msg.Topic, 0, nil) {
		deliver(sub, msg)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.subs
	stack := make([]*node, 0, len(sub.filter))
	for _, tok := range sub.filter {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		stack = append(stack, n)
		n = c
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(sub.filter) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.filter[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

// NewMessage is a convenience constructor.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(filter Topic) *Subscription {
	sub := &Subscription{
		filter: append(Topic(nil), filter...),
		ch:     make(chan *Message, c.bus.qLen),
		conn:   c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes a subscription owned by this connection and closes its channel.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
