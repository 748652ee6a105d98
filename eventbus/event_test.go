package eventbus_test

import (
	"testing"

	"github.com/annchain/bondledger/eventbus"
	"github.com/stretchr/testify/assert"
)

const (
	pingEventType eventbus.EventType = iota + 1
	pongEventType
)

type pingEvent struct {
	Value int
}

func (pingEvent) GetEventType() eventbus.EventType { return pingEventType }

type pongEvent struct{}

func (pongEvent) GetEventType() eventbus.EventType { return pongEventType }

type capturingHandler struct {
	name   string
	panics bool
	events []eventbus.Event
}

func (h *capturingHandler) Name() string { return h.name }

func (h *capturingHandler) HandlerDescription(eventbus.EventType) string {
	return "capture events"
}

func (h *capturingHandler) HandleEvent(ev eventbus.Event) {
	if h.panics {
		panic("broken handler")
	}
	h.events = append(h.events, ev)
}

func newTestBus(handlers ...*capturingHandler) *eventbus.DefaultEventBus {
	bus := &eventbus.DefaultEventBus{}
	bus.InitDefault()
	for _, h := range handlers {
		bus.ListenTo(eventbus.EventHandlerRegisterInfo{
			Type:    pingEventType,
			Name:    "ping",
			Handler: h,
		})
	}
	bus.Build()
	return bus
}

func TestEventBusRoute(t *testing.T) {
	h := &capturingHandler{name: "h"}
	bus := newTestBus(h)

	bus.Route(pingEvent{Value: 1})
	bus.Route(pingEvent{Value: 2})

	assert.Equal(t, 2, len(h.events))
	assert.Equal(t, 1, h.events[0].(pingEvent).Value)
	assert.Equal(t, 2, h.events[1].(pingEvent).Value)
}

func TestEventBusFanOut(t *testing.T) {
	h1 := &capturingHandler{name: "h1"}
	h2 := &capturingHandler{name: "h2"}
	bus := newTestBus(h1, h2)

	bus.Route(pingEvent{Value: 7})

	assert.Equal(t, 1, len(h1.events))
	assert.Equal(t, 1, len(h2.events))
}

func TestEventBusUnknownType(t *testing.T) {
	h := &capturingHandler{name: "h"}
	bus := newTestBus(h)

	// nothing listens to pong, the bus only warns
	bus.Route(pongEvent{})
	assert.Equal(t, 0, len(h.events))
}

func TestEventBusHandlerPanicIsolated(t *testing.T) {
	broken := &capturingHandler{name: "broken", panics: true}
	sane := &capturingHandler{name: "sane"}
	bus := newTestBus(broken, sane)

	assert.NotPanics(t, func() {
		bus.Route(pingEvent{Value: 3})
	})
	assert.Equal(t, 1, len(sane.events))
}

func TestEventBusRequiresBuild(t *testing.T) {
	bus := &eventbus.DefaultEventBus{}
	bus.InitDefault()

	assert.Panics(t, func() {
		bus.Route(pingEvent{})
	})
}
