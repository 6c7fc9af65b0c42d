// Package git publishes generated files by committing them and pushing to
// a remote with the git binary.
package git

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
)

// Runner runs git with args in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// PushPolicy controls how a rejected or failed push is retried.
type PushPolicy struct {
	// Attempts is the total number of push attempts, at least 1.
	Attempts int
	// Backoff is the wait before the second attempt; it grows linearly.
	Backoff time.Duration
	// RebaseOnReject pulls with --rebase before retrying a rejected push.
	RebaseOnReject bool
	// ForceOnFinal forces the last attempt.
	ForceOnFinal bool
}

// DefaultPushPolicy retries three times with rebase and never forces.
func DefaultPushPolicy() PushPolicy {
	return PushPolicy{
		Attempts:       constants.DefaultPushAttempts,
		Backoff:        constants.DefaultPushBackoff,
		RebaseOnReject: true,
	}
}

// Config describes where and how to publish.
type Config struct {
	// RepoRoot is the working tree to commit in.
	RepoRoot string
	// Remote is a remote name or URL, used when no token is configured.
	Remote string
	// Token and Repository ("owner/repo") build an authenticated GitHub URL.
	Token      string
	Repository string
	// Branch receives the push.
	Branch string
	// AuthorName and AuthorEmail override the commit identity when set.
	AuthorName  string
	AuthorEmail string
	Policy      PushPolicy
}

// Publisher commits and pushes files.
type Publisher struct {
	cfg    Config
	runner Runner
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRunner replaces the git runner.
func WithRunner(r Runner) Option {
	return func(p *Publisher) { p.runner = r }
}

// WithSleep replaces the backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Publisher) { p.sleep = sleep }
}

// New creates a Publisher.
func New(cfg Config, opts ...Option) *Publisher {
	if cfg.Branch == "" {
		cfg.Branch = constants.DefaultBranch
	}
	if cfg.Remote == "" {
		cfg.Remote = constants.DefaultRemote
	}
	if cfg.RepoRoot == "" {
		cfg.RepoRoot = "."
	}
	if cfg.Policy.Attempts < 1 {
		cfg.Policy.Attempts = 1
	}
	p := &Publisher{cfg: cfg, runner: ExecRunner{}, sleep: sleepContext}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Branch returns the push target branch.
func (p *Publisher) Branch() string { return p.cfg.Branch }

// RemoteURL returns the push target. With a token and repository it is an
// authenticated GitHub URL; the token must never be logged.
func (p *Publisher) RemoteURL() string {
	if p.cfg.Token != "" && p.cfg.Repository != "" {
		return "https://" + p.cfg.Token + "@" + constants.GitHubHost + "/" + p.cfg.Repository + ".git"
	}
	return p.cfg.Remote
}

// redact hides the token in text headed for errors or logs.
func (p *Publisher) redact(s string) string {
	if p.cfg.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, p.cfg.Token, "***")
}

// git runs a command in the repository root.
func (p *Publisher) git(ctx context.Context, operation string, args ...string) (string, error) {
	out, err := p.runner.Run(ctx, p.cfg.RepoRoot, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.WrapResource(operation, "git", "", errors.ErrCanceled)
		}
		return string(out), &errors.ProcessError{
			Operation: operation,
			Command:   p.redact("git " + strings.Join(args, " ")),
			Output:    p.redact(strings.TrimSpace(string(out))),
			ExitCode:  exitCode(err),
			Err:       errors.New(p.redact(err.Error())),
		}
	}
	return string(out), nil
}

func exitCode(err error) int {
	if e, ok := err.(interface{ ExitCode() int }); ok {
		return e.ExitCode()
	}
	return -1
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
