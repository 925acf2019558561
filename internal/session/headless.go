package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"
)

// HeadlessPrompter is a Prompter for environments without a sign-in surface.
// Credentials arrive only through the local API's token callback, so silent
// prompts are always skipped and the affordance is a log line.
type HeadlessPrompter struct {
	logger *slog.Logger
}

// NewHeadlessPrompter creates a prompter that only logs.
func NewHeadlessPrompter(logger *slog.Logger) *HeadlessPrompter {
	return &HeadlessPrompter{logger: logger}
}

// PromptSilent implements Prompter. There is no one-tap surface here.
func (p *HeadlessPrompter) PromptSilent(context.Context) PromptOutcome {
	return PromptSkipped
}

// ShowSignIn implements Prompter.
func (p *HeadlessPrompter) ShowSignIn() {
	p.logger.Info("Sign-in required, waiting for token via session callback")
}

// HideSignIn implements Prompter.
func (p *HeadlessPrompter) HideSignIn() {}

const probeTimeout = 2 * time.Second

// DialProbe reports connectivity by dialing the album service origin.
type DialProbe struct {
	addr    string
	timeout time.Duration
}

// NewDialProbe creates a probe against the host of baseURL. The port defaults
// from the URL scheme when the origin does not carry one.
func NewDialProbe(baseURL string) (*DialProbe, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse probe origin: %w", err)
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return &DialProbe{
		addr:    net.JoinHostPort(u.Hostname(), port),
		timeout: probeTimeout,
	}, nil
}

// Online implements Connectivity.
func (p *DialProbe) Online() bool {
	conn, err := net.DialTimeout("tcp", p.addr, p.timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
