package main

import (
	"context"
	"errors"
	"testing"

	"fixtext/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"fixtext", "-trigger", "-api-key-path", "/tmp/key"},
			out:  []string{"fixtext", "--trigger", "--api-key-path", "/tmp/key"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"fixtext", "-fallback=none", "-api-key-path=/tmp/key"},
			out:  []string{"fixtext", "--fallback=none", "--api-key-path=/tmp/key"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"fixtext", "--trigger", "--other"},
			out:  []string{"fixtext", "--trigger", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--trigger", "--api-key-path", "/tmp/key", "--fallback", "none"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.trigger {
		t.Fatal("Expected trigger=true")
	}
	if opts.apiKeyPath != "/tmp/key" {
		t.Fatalf("Expected apiKeyPath=/tmp/key, got %q", opts.apiKeyPath)
	}
	if opts.fallback != "none" {
		t.Fatalf("Expected fallback=none, got %q", opts.fallback)
	}
}

type fakeClient struct {
	delegated bool
	err       error
	action    string
}

func (f *fakeClient) TryDelegate(ctx context.Context, action string) (bool, string, error) {
	f.action = action
	return f.delegated, "", f.err
}

func TestHandleTrigger(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		wantErr error
	}{
		{"delegated", &fakeClient{delegated: true}, nil},
		{"no resident", &fakeClient{}, errNoResident},
		{"busy", &fakeClient{delegated: true, err: errors.New("Busy, please retry")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handleTrigger(context.Background(), tt.client)
			if tt.client.action != singleinstance.ActionTrigger {
				t.Errorf("action = %q", tt.client.action)
			}
			switch {
			case tt.client.err != nil:
				if !errors.Is(err, tt.client.err) {
					t.Errorf("err = %v, want wrapped %v", err, tt.client.err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case err != nil:
				t.Errorf("unexpected err %v", err)
			}
		})
	}
}
