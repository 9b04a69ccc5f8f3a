package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fixtext/src/llm"
)

type corrector func(ctx context.Context, req llm.Request) (string, error)

func (f corrector) Correct(ctx context.Context, req llm.Request) (string, error) { return f(ctx, req) }

type outcome struct {
	text string
	err  error
}

func TestPoolDeliversResult(t *testing.T) {
	p := New(1, corrector(func(_ context.Context, req llm.Request) (string, error) {
		return "fixed:" + req.Prompt, nil
	}))
	defer p.Close()

	done := make(chan outcome, 1)
	if !p.Submit(context.Background(), llm.Request{Prompt: "p"}, func(text string, err error) {
		done <- outcome{text, err}
	}) {
		t.Fatal("Submit rejected on an idle pool")
	}
	select {
	case o := <-done:
		if o.err != nil || o.text != "fixed:p" {
			t.Errorf("got %+v", o)
		}
	case <-time.After(time.Second):
		t.Fatal("no result")
	}
}

func TestPoolBackPressure(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := New(1, corrector(func(ctx context.Context, _ llm.Request) (string, error) {
		started <- struct{}{}
		<-release
		return "", nil
	}))
	defer p.Close()
	noop := func(string, error) {}

	if !p.Submit(context.Background(), llm.Request{}, noop) {
		t.Fatal("first submit rejected")
	}
	<-started
	if !p.Submit(context.Background(), llm.Request{}, noop) {
		t.Fatal("queued submit rejected")
	}
	if p.Submit(context.Background(), llm.Request{}, noop) {
		t.Error("third submit should be dropped while worker and queue are full")
	}
	close(release)
}

func TestPoolHonoursDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	p := New(1, corrector(func(context.Context, llm.Request) (string, error) {
		<-block
		return "late", nil
	}))
	defer func() {
		go p.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	done := make(chan outcome, 1)
	p.Submit(ctx, llm.Request{}, func(text string, err error) { done <- outcome{text, err} })

	select {
	case o := <-done:
		if !errors.Is(o.err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want deadline exceeded", o.err)
		}
	case <-time.After(time.Second):
		t.Fatal("deadline not honoured")
	}
}
