package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"fixtext/src/clipboard"
	"fixtext/src/config"
	"fixtext/src/eventloop"
	"fixtext/src/focus"
	"fixtext/src/gui"
	"fixtext/src/interceptor"
	"fixtext/src/keystroke"
	"fixtext/src/logutil"
	"fixtext/src/messages"
	"fixtext/src/notification"
	"fixtext/src/popup"
	"fixtext/src/runtimeinit"
	"fixtext/src/selection"
	"fixtext/src/singleinstance"
	"fixtext/src/worker"
)

const appID = "io.github.fixtext"

var errNoResident = errors.New("no resident FixText instance is running")

type mainOptions struct {
	trigger    bool
	apiKeyPath string
	fallback   string
}

type delegationClient interface {
	TryDelegate(ctx context.Context, action string) (bool, string, error)
}

func main() {
	// The fyne driver and the macOS event tap need the main thread.
	runtime.LockOSThread()

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fixtext",
		Short:         "Fix the selected text in any application with a hotkey",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.trigger {
				// Load .env early so FIXTEXT_PORT_* are applied before the scan
				_, _ = config.Load()
				return handleTrigger(cmd.Context(), singleinstance.NewClient())
			}
			return runResident(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.trigger, "trigger", false, "Ask the running instance to start a session, then exit")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "Capture fallback policy: send-clipboard|none")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to their double-dash form.
func normalizeLegacyArgs(args []string) []string {
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"trigger", "api-key-path", "fallback"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}
	return normalized
}

func handleTrigger(ctx context.Context, client delegationClient) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delegated, _, err := client.TryDelegate(ctx, singleinstance.ActionTrigger)
	if err != nil {
		return fmt.Errorf("resident refused trigger: %w", err)
	}
	if !delegated {
		return errNoResident
	}
	log.Printf("Delegated trigger to resident")
	return nil
}

func runResident(opts mainOptions) error {
	enableDPIAwareness()

	// Load .env early so FIXTEXT_PORT_* are available for pre-flight
	_, _ = config.Load()
	startPort := singleinstance.Ports().Start
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("an instance is already running on port %d", startPort)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			APIKeyPathOverride: opts.apiKeyPath,
			FallbackOverride:   opts.fallback,
		},
		SetupLogging:         logutil.Setup,
		PingProvider:         true,
		ShowBlockingLLMError: true,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config

	log.Printf("FixText initialized")
	log.Printf("Hotkey: %s, confirm keys: %v", cfg.Hotkey, cfg.ConfirmKeys)
	log.Printf("Capture timeout: %s, fallback: %s, request deadline: %s", cfg.CaptureTimeout, cfg.CaptureFallback, cfg.RequestDeadline)

	a := app.NewWithID(appID)
	inbox := make(chan messages.Message, 16)
	win := gui.New(a, inbox)

	clip := clipboard.NewSystem()
	keys := keystroke.Robot{}
	gate, err := interceptor.New(interceptor.NewSystemTap(), cfg.ConfirmKeys, inbox)
	if err != nil {
		return fmt.Errorf("invalid CONFIRM_KEYS: %w", err)
	}

	loop := eventloop.New(cfg, eventloop.Deps{
		Clipboard: clip,
		Capturer:  selection.NewEngine(clip, keys),
		Replacer:  selection.NewReplacer(clip, keys),
		Focus:     focus.NewRobot(win),
		Gate:      gate,
		Pool:      worker.New(1, rt.Client),
		UI: popup.Tee{
			Primary: win,
			Status:  popup.Notifier{},
			Hidden:  func() bool { return !win.Visible() },
		},
		Server: singleinstance.NewServer(),
		Inbox:  inbox,
	})

	if err := loop.StartHotkey(cfg.Hotkey); err != nil {
		log.Printf("Hotkey unavailable: %v", err)
		notification.ShowStatus(fmt.Sprintf("Hotkey %q unavailable; use the tray menu or --trigger", cfg.Hotkey))
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
		}
		fyne.Do(a.Quit)
	}()

	a.Run()
	cancel()
	<-loopDone
	return nil
}
