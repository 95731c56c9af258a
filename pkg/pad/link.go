package pad

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gwillem/teachbot/pkg/memory"
)

const defaultPollHz = 250

// Connect retry budget. A controller that never reports a live state within
// this budget is a fatal startup condition.
var (
	connectRetries = 10
	retryDelay     = time.Second
)

// Link owns one physical controller. It polls the device on its own
// goroutine and delivers every input change to the installed handler. The
// system cannot operate without a controller, so a connect that exhausts its
// retry budget is fatal.
type Link struct {
	open   Opener
	feed   memory.FeedFunc
	pollHz int

	mu      sync.Mutex
	dev     Device
	handler Handler
	stop    chan struct{}
	wg      sync.WaitGroup
	alive   atomic.Bool
}

// Connect opens the controller, polling with a bounded retry budget until it
// reports a live state. pollHz <= 0 selects the default rate.
func Connect(open Opener, pollHz int, feed memory.FeedFunc) (*Link, error) {
	if feed == nil {
		feed = func(string, string) {}
	}
	if pollHz <= 0 {
		pollHz = defaultPollHz
	}
	l := &Link{open: open, feed: feed, pollHz: pollHz}
	if err := l.connect(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Link) connect() error {
	for attempt := 0; attempt < connectRetries; attempt++ {
		dev, err := l.open()
		if err == nil {
			if _, err = dev.Read(); err == nil {
				l.mu.Lock()
				l.dev = dev
				l.mu.Unlock()
				l.alive.Store(true)
				l.log("Connection successful")
				return nil
			}
			dev.Close()
		}
		l.feed("Connecting", "Controller")
		time.Sleep(retryDelay)
	}
	return fmt.Errorf("controller did not become live after %d attempts", connectRetries)
}

func (l *Link) log(msg string) {
	l.mu.Lock()
	dev := l.dev
	l.mu.Unlock()
	source := "Controller"
	if dev != nil {
		source = "Controller " + dev.Serial()
	}
	l.feed(msg, source)
}

// Apply installs the command handler and starts the poll goroutine. All
// command kinds are dispatched from this point on; Apply must be called
// before any input is expected.
func (l *Link) Apply(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
	l.startLocked()
}

func (l *Link) startLocked() {
	if l.stop != nil || l.handler == nil || l.dev == nil {
		return
	}
	l.stop = make(chan struct{})
	l.wg.Add(1)
	go l.poll(l.dev, l.handler, l.stop)
}

func (l *Link) poll(dev Device, h Handler, stop chan struct{}) {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Second / time.Duration(l.pollHz))
	defer ticker.Stop()

	var d dispatcher
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s, err := dev.Read()
			if err != nil {
				if l.alive.Swap(false) {
					l.log("Lost controller")
				}
				continue
			}
			l.alive.Store(true)
			for _, cmd := range d.step(s) {
				h(cmd)
			}
		}
	}
}

// Alive reports whether the last device poll succeeded.
func (l *Link) Alive() bool {
	return l.alive.Load()
}

// SetColor drives the controller's RGB light.
func (l *Link) SetColor(r, g, b uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dev != nil {
		l.dev.SetColor(r, g, b)
	}
}

// SetLED drives the controller's binary LED.
func (l *Link) SetLED(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dev != nil {
		l.dev.SetLED(on)
	}
}

// Reconnect drops the current device handle and opens a fresh one, keeping
// the installed handler. The retry budget applies as on first connect.
func (l *Link) Reconnect() error {
	l.closeDevice()
	if err := l.connect(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startLocked()
	return nil
}

func (l *Link) closeDevice() {
	l.mu.Lock()
	stop := l.stop
	l.stop = nil
	dev := l.dev
	l.dev = nil
	l.mu.Unlock()

	if stop != nil {
		close(stop)
		l.wg.Wait()
	}
	if dev != nil {
		dev.Close()
	}
	l.alive.Store(false)
}

// Close releases the device. Safe to call when the device is already gone.
func (l *Link) Close() error {
	l.closeDevice()
	return nil
}
