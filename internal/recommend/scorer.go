// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend runs the external recommendation scorer and reads its
// line-delimited output. The scorer is a separate process invoked with the
// seed title as its last argument; it succeeds only if it exits zero and
// writes nothing to stderr.
package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cinedex/internal/metrics"
	"github.com/pdiddy/cinedex/pkg/types"
)

// ErrEmptySeed is returned when no seed title is given.
var ErrEmptySeed = errors.New("movie name is required")

// ScorerError reports a failed scorer run. Details carries the scorer's
// stderr, or a description of the failure when stderr was empty.
type ScorerError struct {
	Details string
	Err     error
}

func (e *ScorerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recommendation scorer failed: %v: %s", e.Err, e.Details)
	}
	return "recommendation scorer failed: " + e.Details
}

func (e *ScorerError) Unwrap() error { return e.Err }

// executor abstracts process execution for testing.
type executor interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Do not wait forever on grandchildren that inherited the pipes.
	cmd.WaitDelay = 2 * time.Second
	return cmd.Run()
}

// Scorer invokes the configured scorer command.
type Scorer struct {
	cfg     types.ScorerConfig
	exec    executor
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewScorer returns a Scorer running cfg.Command. m may be nil.
func NewScorer(cfg types.ScorerConfig, log zerolog.Logger, m *metrics.Metrics) *Scorer {
	return &Scorer{cfg: cfg, exec: osExecutor{}, log: log, metrics: m}
}

// Recommend runs the scorer for seed and returns its titles in output
// order. Any non-zero exit, stderr output, start failure, or timeout is a
// *ScorerError; nothing is retried.
func (s *Scorer) Recommend(ctx context.Context, seed string) ([]string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptySeed
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(s.cfg.Args)+1)
	args = append(args, s.cfg.Args...)
	args = append(args, seed)

	var stdout, stderr bytes.Buffer
	start := time.Now()
	err := s.exec.Run(ctx, s.cfg.Command, args, &stdout, &stderr)
	took := time.Since(start)

	if serr := s.classify(ctx, err, stderr.String()); serr != nil {
		s.metrics.ObserveScorer("error")
		s.log.Error().Err(serr.Err).Str("seed", seed).Str("details", serr.Details).Dur("took", took).
			Msg("scorer failed")
		return nil, serr
	}

	titles := ParseOutput(stdout.String())
	s.metrics.ObserveScorer("ok")
	s.log.Info().Str("seed", seed).Int("titles", len(titles)).Dur("took", took).Msg("scorer finished")
	return titles, nil
}

// classify maps a finished run to a ScorerError, or nil on success.
func (s *Scorer) classify(ctx context.Context, runErr error, stderr string) *ScorerError {
	details := strings.TrimSpace(stderr)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		if details == "" {
			details = fmt.Sprintf("scorer timed out after %s", s.cfg.Timeout)
		}
		return &ScorerError{Details: details, Err: context.DeadlineExceeded}
	case runErr != nil:
		if details == "" {
			details = runErr.Error()
		}
		return &ScorerError{Details: details, Err: runErr}
	case details != "":
		return &ScorerError{Details: details}
	}
	return nil
}

// ParseOutput splits scorer stdout into titles, trimming whitespace and
// dropping blank lines. Duplicates are kept.
func ParseOutput(out string) []string {
	titles := []string{}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}
