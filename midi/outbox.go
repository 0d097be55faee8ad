package midi

import (
	"sync"

	"dialdeck/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type outMsg struct {
	port string
	msg  gomidi.Message
}

// Outbox queues outbound device commands so module handlers never block the
// frame loop on port I/O. Sends are fire-and-forget: a full queue drops the
// message rather than stall. Port senders open lazily and are reused.
type Outbox struct {
	defaultPort string
	senders     map[string]func(gomidi.Message) error
	sendersMu   sync.RWMutex

	ch       chan outMsg
	stopChan chan struct{}

	// openSender is swappable for tests; defaults to opening a real port
	openSender func(portName string) func(gomidi.Message) error
}

func NewOutbox(defaultPort string) *Outbox {
	o := &Outbox{
		defaultPort: defaultPort,
		senders:     make(map[string]func(gomidi.Message) error),
		ch:          make(chan outMsg, 128),
		stopChan:    make(chan struct{}),
	}
	o.openSender = o.openPort
	return o
}

// Send queues a message for the named port ("" = default port). Non-blocking.
func (o *Outbox) Send(port string, msg gomidi.Message) {
	if port == "" {
		port = o.defaultPort
	}
	select {
	case o.ch <- outMsg{port: port, msg: msg}:
	default:
		debug.Log("outbox", "queue full, dropped message for %s", port)
	}
}

// Run drains the queue until Stop (blocking - run in goroutine)
func (o *Outbox) Run() {
	for {
		select {
		case <-o.stopChan:
			return
		case m := <-o.ch:
			if sender := o.getSender(m.port); sender != nil {
				sender(m.msg)
			}
		}
	}
}

// Stop terminates the drain loop
func (o *Outbox) Stop() {
	close(o.stopChan)
}

// SetSender installs a sender for a port directly (tests, virtual ports)
func (o *Outbox) SetSender(port string, fn func(gomidi.Message) error) {
	o.sendersMu.Lock()
	defer o.sendersMu.Unlock()
	o.senders[port] = fn
}

// getSender returns a sender for the given port name, lazily opening it
func (o *Outbox) getSender(portName string) func(gomidi.Message) error {
	if portName == "" {
		return nil
	}

	o.sendersMu.RLock()
	if sender, ok := o.senders[portName]; ok {
		o.sendersMu.RUnlock()
		return sender
	}
	o.sendersMu.RUnlock()

	o.sendersMu.Lock()
	defer o.sendersMu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := o.senders[portName]; ok {
		return sender
	}

	sender := o.openSender(portName)
	if sender != nil {
		o.senders[portName] = sender
	}
	return sender
}

func (o *Outbox) openPort(portName string) func(gomidi.Message) error {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				debug.Log("outbox", "open %s: %v", portName, err)
				return nil
			}
			return sender
		}
	}
	return nil
}
