package tutor

import (
	"context"
	"sync"

	"github.com/linguachat/tutor-core/internal/tutor/model"
)

type sentMessage struct {
	text string
	from model.TutorIdentity
}

// fakeChannel records every attempted send. Scripted errors are consumed one
// per SendMessage call; eventErr applies to every SendEvent.
type fakeChannel struct {
	mu          sync.Mutex
	msgAttempts []sentMessage
	events      []string
	msgErrs     []error
	eventErr    error
}

func (f *fakeChannel) SendMessage(_ context.Context, text string, from model.TutorIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgAttempts = append(f.msgAttempts, sentMessage{text: text, from: from})
	if len(f.msgErrs) > 0 {
		err := f.msgErrs[0]
		f.msgErrs = f.msgErrs[1:]
		return err
	}
	return nil
}

func (f *fakeChannel) SendEvent(_ context.Context, eventType, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return f.eventErr
}

func (f *fakeChannel) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.msgAttempts))
	copy(out, f.msgAttempts)
	return out
}

func (f *fakeChannel) eventCount(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == eventType {
			n++
		}
	}
	return n
}

func (f *fakeChannel) lastEvent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1]
}

type fakeProvider struct {
	ch *fakeChannel
}

func (f *fakeProvider) Channel(string) model.Channel {
	return f.ch
}

// fakeForwarder scripts one completion outcome and observes warm-up calls.
type fakeForwarder struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
	delay func()

	warmupStarted chan struct{}
	warmupBlock   chan struct{}
	warmupOnce    sync.Once
	warmupErr     error
}

func (f *fakeForwarder) ChatCompletion(context.Context, string, string) (string, error) {
	f.mu.Lock()
	f.calls++
	delay := f.delay
	f.mu.Unlock()
	if delay != nil {
		delay()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeForwarder) Warmup(context.Context) error {
	if f.warmupStarted != nil {
		f.warmupOnce.Do(func() { close(f.warmupStarted) })
	}
	if f.warmupBlock != nil {
		<-f.warmupBlock
	}
	return f.warmupErr
}

func (f *fakeForwarder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
