package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emailwriter/emailwriter/internal/app"
	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/model"
	emailwriter "github.com/emailwriter/emailwriter/sdk/go"
)

func readEmail(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	var r io.Reader = cmd.InOrStdin()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("opening email file: %w", err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading email: %w", err)
	}
	return string(b), nil
}

func readRequest(cmd *cobra.Command) (model.EmailRequest, error) {
	var req model.EmailRequest
	var err error
	if req.EmailContent, err = readEmail(cmd); err != nil {
		return req, err
	}
	req.Language, _ = cmd.Flags().GetString("language")
	if f := cmd.Flags().Lookup("tone"); f != nil {
		req.Tone = f.Value.String()
	}
	return req, nil
}

// remoteClient returns a client for --remote, or nil when the flag is unset
func remoteClient(cmd *cobra.Command) *emailwriter.Client {
	base, _ := cmd.Flags().GetString("remote")
	if base == "" {
		return nil
	}
	return emailwriter.NewClient(emailwriter.Config{BaseURL: base})
}

func newOneShotApp(cmd *cobra.Command, req model.EmailRequest) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	// Keep stdout for the result
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, "console")
	log.Debug().Int("email_len", len(req.EmailContent)).Str("language", req.Language).Msg("running one-shot command")

	// Rate limiting only applies to the HTTP server
	cfg.Redis.Enabled = false
	cfg.Security.RateLimiting.Enabled = false

	return app.New(cmd.Context(), cfg, log)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := readRequest(cmd)
	if err != nil {
		return err
	}

	var reply string
	if c := remoteClient(cmd); c != nil {
		reply, err = c.Generate(cmd.Context(), emailwriter.Request{
			EmailContent: req.EmailContent,
			Tone:         req.Tone,
			Language:     req.Language,
		})
	} else {
		var a *app.App
		if a, err = newOneShotApp(cmd, req); err != nil {
			return err
		}
		defer a.Close()
		reply, err = a.Email.Generate(cmd.Context(), req)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	req, err := readRequest(cmd)
	if err != nil {
		return err
	}

	var analysis interface{}
	if c := remoteClient(cmd); c != nil {
		analysis, err = c.Analyze(cmd.Context(), emailwriter.Request{
			EmailContent: req.EmailContent,
			Language:     req.Language,
		})
	} else {
		a, aerr := newOneShotApp(cmd, req)
		if aerr != nil {
			return aerr
		}
		defer a.Close()
		analysis, err = a.Email.Analyze(cmd.Context(), req)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}
