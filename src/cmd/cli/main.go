package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"fixtext/src/config"
	"fixtext/src/llm"
	"fixtext/src/runtimeinit"
	"fixtext/src/session"
)

const (
	maxFileSizeMB = 1
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var (
	errEmptyInput = errors.New("input is empty")
	errNotUTF8    = errors.New("input is not valid UTF-8 text")
)

type cliOptions struct {
	filePath   string
	jsonOutput bool
	verbose    bool
	apiKeyPath string
}

// env carries the process surfaces so tests can swap them.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// bootstrap returns the corrector and the credential to send with it.
	bootstrap func(ctx context.Context, opts cliOptions) (llm.Corrector, string, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), defaultEnv())
}

func defaultEnv() env {
	return env{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		bootstrap: bootstrapClient,
	}
}

func bootstrapClient(ctx context.Context, opts cliOptions) (llm.Corrector, string, error) {
	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions: config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath},
	})
	if err != nil {
		return nil, "", err
	}
	if opts.verbose {
		log.Printf("[verbose] Provider=%s Model=%s key file=%s", rt.Config.Provider, rt.Config.Model, rt.Config.APIKeyPath)
	}
	return rt.Client, rt.Config.APIKey, nil
}

func runWithArgs(args []string, e env) error {
	if len(args) == 0 {
		args = []string{"fixtext-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, e)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fixtext-cli",
		Short:         "Correct a text file with the configured LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, e)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to text file (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, e env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Configure logging before anything else logs.
	if opts.verbose {
		log.SetOutput(e.stderr)
		fmt.Fprintf(e.stderr, "[verbose] Starting text correction\n")
	} else {
		log.SetOutput(io.Discard)
	}

	text, err := readInput(opts.filePath, e.stdin)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(e.stderr, "[verbose] Read %d characters\n", utf8.RuneCountInString(text))
	}

	corrector, credential, err := e.bootstrap(ctx, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	fixed, err := corrector.Correct(ctx, llm.Request{
		Prompt:     llm.BuildInstructionPrompt(text),
		Credential: credential,
	})
	elapsed := time.Since(start)
	if err != nil {
		if opts.verbose {
			fmt.Fprintf(e.stderr, "[verbose] Correction failed after %v: %v\n", elapsed, err)
		}
		return fmt.Errorf("correction failed: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(e.stderr, "[verbose] Correction completed in %v\n", elapsed)
	}

	return outputResult(e.stdout, fixed, opts.filePath, elapsed, opts.jsonOutput)
}

func readInput(filePath string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}
	return validateText(data)
}

func validateText(data []byte) (string, error) {
	if len(data) > maxFileSize {
		return "", fmt.Errorf("input exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errEmptyInput
	}
	return text, nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "json", "verbose", "api-key-path"} {
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

type CorrectionResult struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func outputResult(w io.Writer, text, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		return session.StdoutTarget{Writer: w}.OnSuccess(text)
	}

	result := CorrectionResult{
		Text:      text,
		Source:    sourcePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: utf8.RuneCountInString(text),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
