package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fixtext/src/clipboard"
	"fixtext/src/config"
	"fixtext/src/focus"
	"fixtext/src/hotkey"
	"fixtext/src/llm"
	"fixtext/src/logutil"
	"fixtext/src/messages"
	"fixtext/src/popup"
	"fixtext/src/selection"
	"fixtext/src/session"
	"fixtext/src/singleinstance"
	"fixtext/src/worker"
)

// ErrBusy is reported when a capture or replacement is still in progress.
var ErrBusy = errors.New("Busy, please retry")

const (
	defaultActivationSettle = 120 * time.Millisecond
	inboxSize               = 16
)

// Capturer extracts the current selection.
type Capturer interface {
	CaptureSelectedText(ctx context.Context, timeout time.Duration) (*selection.CaptureResult, error)
}

// Replacer pastes text over the current selection.
type Replacer interface {
	ReplaceSelection(ctx context.Context, text string) error
}

// Gate routes confirmation keys into the inbox while armed.
type Gate interface {
	Arm() error
	Disarm()
}

// Dispatcher runs correction requests off the loop goroutine.
type Dispatcher interface {
	Submit(ctx context.Context, req llm.Request, cb worker.ResultCallback) bool
	Close()
}

// Deps are the loop's collaborators. Server may be nil to disable delegation.
type Deps struct {
	Clipboard clipboard.Host
	Capturer  Capturer
	Replacer  Replacer
	Focus     focus.Host
	Gate      Gate
	Pool      Dispatcher
	UI        popup.Controller
	Server    singleinstance.Server
	Inbox     chan messages.Message
}

// Loop is the single-threaded session coordinator. Every field below deps is
// owned by the Run goroutine.
type Loop struct {
	deps Deps

	credential       string
	captureTimeout   time.Duration
	fallback         string
	deadline         time.Duration
	activationSettle time.Duration

	state         session.State
	sess          *session.Session
	slot          session.Slot
	captureToken  session.Token
	captureSource focus.AppHandle
	inflight      int

	done chan struct{}
}

// New creates a coordinator with settings from cfg. A nil cfg uses defaults.
func New(cfg *config.Config, d Deps) *Loop {
	if d.Inbox == nil {
		d.Inbox = make(chan messages.Message, inboxSize)
	}
	if d.Gate == nil {
		d.Gate = noGate{}
	}
	if d.UI == nil {
		d.UI = popup.Notifier{}
	}
	l := &Loop{
		deps:             d,
		captureTimeout:   selection.DefaultTimeout,
		fallback:         config.FallbackSendClipboard,
		deadline:         20 * time.Second,
		activationSettle: defaultActivationSettle,
		done:             make(chan struct{}),
	}
	if cfg != nil {
		l.credential = cfg.APIKey
		if cfg.CaptureTimeout > 0 {
			l.captureTimeout = cfg.CaptureTimeout
		}
		if cfg.CaptureFallback != "" {
			l.fallback = cfg.CaptureFallback
		}
		if cfg.RequestDeadline > 0 {
			l.deadline = cfg.RequestDeadline
		}
	}
	return l
}

// Inbox is the send side handed to collaborators.
func (l *Loop) Inbox() chan<- messages.Message { return l.deps.Inbox }

// SetActivationSettle overrides the pause after re-activating the source app.
func (l *Loop) SetActivationSettle(d time.Duration) { l.activationSettle = d }

// Deadline returns the configured request deadline.
func (l *Loop) Deadline() time.Duration { return l.deadline }

// State reports the coordinator state. Only meaningful on the loop goroutine
// or after Run returned.
func (l *Loop) State() session.State { return l.state }

// StartHotkey registers a global hotkey and posts presses into the loop.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	_, err := hotkey.Listen(combo, func() {
		select {
		case l.deps.Inbox <- messages.HotkeyPressed{Combo: combo}:
		default:
			log.Printf("hotkey: inbox full, press dropped")
		}
	})
	return err
}

// Run processes inbox messages and delegated requests until ctx is cancelled
// or a Quit message arrives.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reqCh chan singleinstance.Conn
	if l.deps.Server != nil {
		if err := l.deps.Server.Start(ctx); err != nil {
			return err
		}
		if p := l.deps.Server.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.deps.Server.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-l.done:
					_ = conn.Close()
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(ctx, conn)
		case m := <-l.deps.Inbox:
			if _, quit := m.(messages.Quit); quit {
				log.Printf("Run: quit requested")
				return nil
			}
			l.handle(ctx, m)
		}
	}
}

func (l *Loop) shutdown() {
	l.teardown("shutdown")
	close(l.done)
	hotkey.Stop()
	if l.deps.Server != nil {
		_ = l.deps.Server.Close()
	}
	if l.deps.Pool != nil {
		l.deps.Pool.Close()
	}
}

func (l *Loop) handle(ctx context.Context, m messages.Message) {
	switch m := m.(type) {
	case messages.HotkeyPressed:
		if err := l.handleHotkey(ctx); err != nil {
			l.deps.UI.ShowStatus(err.Error())
		}
	case messages.CaptureFinished:
		l.handleCaptureFinished(ctx, m)
	case messages.ResponseArrived:
		l.handleResponse(m)
	case messages.ConfirmRequested:
		l.handleConfirm(ctx, m)
	case messages.ApplyFinished:
		l.handleApplyFinished(m)
	case messages.WindowDismissed:
		l.handleDismiss()
	default:
		log.Printf("handle: unexpected message %s", m.Type())
	}
}

// post delivers a message from a worker goroutine. It gives up once the loop
// has stopped.
func (l *Loop) post(ctx context.Context, m messages.Message) bool {
	select {
	case l.deps.Inbox <- m:
		return true
	case <-l.done:
	case <-ctx.Done():
	}
	return false
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	defer conn.Close()
	switch conn.Request().Action {
	case singleinstance.ActionTrigger:
		if err := l.handleHotkey(ctx); err != nil {
			_ = conn.RespondError(err.Error())
			return
		}
		_ = conn.RespondSuccess("")
	case singleinstance.ActionShow:
		l.deps.Focus.BringOwnWindowToFront()
		_ = conn.RespondSuccess("")
	default:
		_ = conn.RespondError("unsupported request")
	}
}

func (l *Loop) handleHotkey(ctx context.Context) error {
	log.Printf("handleHotkey: state=%s", l.state)
	if l.inflight > 0 || l.state == session.Capturing || l.state == session.Applying {
		log.Printf("handleHotkey: busy, skipping")
		return ErrBusy
	}

	if l.deps.Focus.IsOwnWindowForeground() {
		log.Printf("handleHotkey: own window is frontmost, cancelling session")
		l.teardown("window activated")
		l.deps.Focus.BringOwnWindowToFront()
		return nil
	}

	if l.sess != nil || l.slot.Active() {
		l.teardown("superseded")
	}

	tok := session.NewToken()
	l.captureToken = tok
	l.captureSource = l.deps.Focus.FrontmostApplication()
	l.state = session.Capturing
	l.inflight++
	l.deps.UI.Reset()

	timeout := l.captureTimeout
	go func() {
		res, err := l.deps.Capturer.CaptureSelectedText(ctx, timeout)
		if !l.post(ctx, messages.CaptureFinished{Token: tok, Result: res, Err: err}) {
			res.Restore()
		}
	}()
	return nil
}

func (l *Loop) handleCaptureFinished(ctx context.Context, m messages.CaptureFinished) {
	l.inflight--
	if m.Token != l.captureToken || l.state != session.Capturing {
		log.Printf("handleCaptureFinished: capture no longer wanted")
		m.Result.Restore()
		return
	}
	l.captureToken = ""
	l.state = session.Idle

	if m.Err != nil {
		log.Printf("handleCaptureFinished: capture failed: %v", m.Err)
		l.fallbackRequest(ctx, m.Err)
		return
	}

	log.Printf("handleCaptureFinished: captured %d characters: %q", len(m.Result.Text), logutil.Preview(m.Result.Text, 50))
	l.sess = &session.Session{ID: m.Token, Capture: m.Result, Source: l.captureSource}
	l.state = session.AwaitingResponse
	l.deps.UI.ShowPrompt(m.Result.Text)
	l.deps.Focus.BringOwnWindowToFront()

	if !l.dispatch(ctx, m.Token, m.Result.Text, l.onSessionReply) {
		l.teardown("dispatch rejected")
		l.deps.UI.ShowStatus(ErrBusy.Error())
	}
}

// fallbackRequest handles a failed capture according to the configured
// policy. The clipboard-text request is not a session: its reply is copied to
// the clipboard and never armed for replacement.
func (l *Loop) fallbackRequest(ctx context.Context, cause error) {
	if l.fallback == config.FallbackNone {
		l.deps.UI.ShowStatus(captureFailureText(cause))
		return
	}

	text := clipboard.ReadText(l.deps.Clipboard)
	if strings.TrimSpace(text) == "" {
		l.deps.UI.ShowStatus(captureFailureText(cause) + "; the clipboard is empty too")
		return
	}

	log.Printf("fallbackRequest: sending clipboard text (%d characters)", len(text))
	l.deps.UI.ShowPrompt(text)
	l.deps.UI.ShowStatus("No selection captured, correcting clipboard text")
	l.deps.Focus.BringOwnWindowToFront()

	target := session.ClipboardTarget{Host: l.deps.Clipboard}
	ok := l.dispatch(ctx, session.NewToken(), text, func(r session.Reply) bool {
		if r.Err != nil {
			l.deps.UI.ShowStatus("Request failed: " + r.Err.Error())
			return true
		}
		if r.Text == "" {
			l.deps.UI.ShowStatus(session.ErrEmptyReply.Error())
			return true
		}
		l.deps.UI.ShowResponse(r.Text, false)
		if err := target.OnSuccess(r.Text); err != nil {
			l.deps.UI.ShowStatus(err.Error())
			return true
		}
		l.deps.UI.ShowStatus("Corrected text copied to clipboard")
		return true
	})
	if !ok {
		l.deps.UI.ShowStatus(ErrBusy.Error())
	}
}

func captureFailureText(err error) string {
	switch {
	case errors.Is(err, selection.ErrInjectionFailed):
		return "Could not send the copy shortcut (check input permissions)"
	case errors.Is(err, selection.ErrEmptyCapture):
		return "The selection contained no text"
	default:
		return "No text selected"
	}
}

// dispatch registers h for tok and submits the instruction prompt. It
// returns false when the pool rejected the job.
func (l *Loop) dispatch(ctx context.Context, tok session.Token, text string, h session.Handler) bool {
	l.slot.Register(tok, h)
	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	req := llm.Request{Prompt: llm.BuildInstructionPrompt(text), Credential: l.credential}
	submitted := l.deps.Pool.Submit(jobCtx, req, func(reply string, err error) {
		cancel()
		l.post(ctx, messages.ResponseArrived{Token: tok, Text: reply, Err: err})
	})
	if !submitted {
		cancel()
		l.slot.Clear()
	}
	return submitted
}

func (l *Loop) handleResponse(m messages.ResponseArrived) {
	handled, err := l.slot.Deliver(m.Token, session.Reply{Text: strings.TrimSpace(m.Text), Err: m.Err})
	if err != nil {
		log.Printf("handleResponse: dropping reply: %v", err)
		return
	}
	log.Printf("handleResponse: handled=%v", handled)
}

func (l *Loop) onSessionReply(r session.Reply) bool {
	if l.sess == nil || l.state != session.AwaitingResponse {
		return false
	}
	if r.Err != nil {
		log.Printf("onSessionReply: request failed: %v", r.Err)
		l.teardown("request failed")
		l.deps.UI.ShowStatus("Request failed: " + r.Err.Error())
		return true
	}
	if r.Text == "" {
		l.teardown("empty reply")
		l.deps.UI.ShowStatus(session.ErrEmptyReply.Error())
		return true
	}

	l.sess.Pending = r.Text
	l.state = session.ResponseReady
	l.deps.UI.ShowResponse(r.Text, true)
	if err := l.deps.Gate.Arm(); err != nil {
		log.Printf("onSessionReply: confirmation keys unavailable: %v", err)
		l.deps.UI.ShowStatus("Use Apply & Hide to replace the selection")
		return true
	}
	l.deps.UI.ShowStatus("Press Enter to replace the selection")
	return true
}

func (l *Loop) handleConfirm(ctx context.Context, m messages.ConfirmRequested) {
	if l.state != session.ResponseReady || l.sess == nil || l.sess.Pending == "" {
		log.Printf("handleConfirm: ignored (%s) in state %s", m.Source, l.state)
		return
	}
	log.Printf("handleConfirm: applying via %s", m.Source)
	l.deps.Gate.Disarm()
	l.state = session.Applying
	l.inflight++
	l.deps.Focus.HideOwnWindow()

	s := *l.sess
	go func() {
		err := l.apply(ctx, s)
		l.post(ctx, messages.ApplyFinished{Token: s.ID, Err: err})
	}()
}

// apply runs off the loop goroutine on a copy of the session.
func (l *Loop) apply(ctx context.Context, s session.Session) error {
	if s.Source.Valid() && l.deps.Focus.FrontmostApplication().PID != s.Source.PID {
		if !l.deps.Focus.ActivateExternalApplication(s.Source) {
			return fmt.Errorf("%w: %s", session.ErrFocusActivationFailed, s.Source)
		}
		if l.activationSettle > 0 {
			t := time.NewTimer(l.activationSettle)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return l.deps.Replacer.ReplaceSelection(ctx, s.Pending)
}

func (l *Loop) handleApplyFinished(m messages.ApplyFinished) {
	l.inflight--
	if l.sess == nil || l.sess.ID != m.Token {
		log.Printf("handleApplyFinished: unknown session")
		return
	}
	l.teardown("applied")

	switch {
	case m.Err == nil:
		log.Printf("handleApplyFinished: selection replaced")
	case errors.Is(m.Err, session.ErrFocusActivationFailed):
		log.Printf("handleApplyFinished: %v", m.Err)
		l.deps.UI.ShowStatus("Could not return to the original application; nothing was replaced")
		l.deps.Focus.BringOwnWindowToFront()
	default:
		log.Printf("handleApplyFinished: replacement failed: %v", m.Err)
		l.deps.UI.ShowStatus("Replacement failed: " + m.Err.Error())
		l.deps.Focus.BringOwnWindowToFront()
	}
}

func (l *Loop) handleDismiss() {
	l.deps.Focus.HideOwnWindow()
	if l.state == session.Applying {
		log.Printf("handleDismiss: replacement in progress, session ends when it finishes")
		return
	}
	l.teardown("dismissed")
}

// teardown ends the current session and any standalone request: handlers are
// invalidated, the tap is released and the pre-capture clipboard restored.
// An in-flight capture is abandoned; its result restores itself on arrival.
func (l *Loop) teardown(reason string) {
	l.slot.Clear()
	l.deps.Gate.Disarm()
	l.captureToken = ""
	if l.sess != nil {
		log.Printf("teardown: session ended (%s)", reason)
		l.sess.Capture.Restore()
		l.sess = nil
	}
	l.state = session.Idle
}

type noGate struct{}

func (noGate) Arm() error { return errors.New("no confirmation tap") }
func (noGate) Disarm()    {}
