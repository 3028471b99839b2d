// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Review describes an output awaiting a human decision.
type Review struct {
	InvocationID string
	SkillID      string
	Disposition  Disposition
	Confidence   float64
	Reason       string
}

// Decision is an operator's verdict on a queued review.
type Decision struct {
	Approved bool
	Reason   string
}

// ApprovalHook resolves a pending review. The orchestrator wires its own
// implementation; Static and Console hooks cover tests and local operation.
type ApprovalHook interface {
	Request(ctx context.Context, review Review) Decision
}

// StaticApprovalHook returns a fixed decision for every review.
type StaticApprovalHook struct {
	Decision Decision
}

// Request returns the configured decision.
func (h StaticApprovalHook) Request(_ context.Context, _ Review) Decision {
	return h.Decision
}

// ConsoleApprovalHook prompts for approval on stdin/stdout.
type ConsoleApprovalHook struct {
	in      *bufio.Reader
	out     io.Writer
	prompt  string
	timeout time.Duration
}

// ConsoleApprovalOption configures the console approval hook.
type ConsoleApprovalOption func(*ConsoleApprovalHook)

// NewConsoleApprovalHook creates a console-based approval hook.
func NewConsoleApprovalHook(opts ...ConsoleApprovalOption) *ConsoleApprovalHook {
	h := &ConsoleApprovalHook{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		prompt: "Approve? [y/N]: ",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithApprovalInput sets the input reader for the console hook.
func WithApprovalInput(r io.Reader) ConsoleApprovalOption {
	return func(h *ConsoleApprovalHook) {
		if r != nil {
			h.in = bufio.NewReader(r)
		}
	}
}

// WithApprovalOutput sets the output writer for the console hook.
func WithApprovalOutput(w io.Writer) ConsoleApprovalOption {
	return func(h *ConsoleApprovalHook) {
		if w != nil {
			h.out = w
		}
	}
}

// WithApprovalTimeout sets a timeout for waiting on operator input.
func WithApprovalTimeout(timeout time.Duration) ConsoleApprovalOption {
	return func(h *ConsoleApprovalHook) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// Request prompts for approval and returns the operator decision. Missing or
// invalid input rejects: the pending path is deny-by-default.
func (h *ConsoleApprovalHook) Request(ctx context.Context, review Review) Decision {
	if h == nil || h.in == nil {
		return Decision{Approved: false, Reason: "approval input not available"}
	}

	reason := strings.TrimSpace(review.Reason)
	if reason == "" {
		reason = fmt.Sprintf("confidence %.2f below auto-approve band", review.Confidence)
	}

	_, _ = fmt.Fprintf(h.out, "\nApproval required for skill %q (invocation %s)\n", review.SkillID, review.InvocationID)
	_, _ = fmt.Fprintf(h.out, "Reason: %s\n", reason)
	_, _ = fmt.Fprint(h.out, h.prompt)

	responseCh := make(chan string, 1)
	go func() {
		line, _ := h.in.ReadString('\n')
		responseCh <- line
	}()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		return Decision{Approved: false, Reason: "approval cancelled"}
	case line := <-responseCh:
		answer := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(answer, "y") {
			return Decision{Approved: true, Reason: "approved by operator"}
		}
		return Decision{Approved: false, Reason: "rejected by operator"}
	}
}
