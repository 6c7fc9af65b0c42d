package git

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// PushResult describes a finished push.
type PushResult struct {
	Attempts int  `json:"attempts" yaml:"attempts"`
	Forced   bool `json:"forced" yaml:"forced"`
	Rebased  int  `json:"rebased" yaml:"rebased"`
}

// Push sends HEAD to the configured branch following the push policy.
func (p *Publisher) Push(ctx context.Context) (*PushResult, error) {
	logger := logging.FromContext(logging.WithOperation(ctx, "push"))
	policy := p.cfg.Policy
	remote := p.RemoteURL()
	refspec := "HEAD:" + p.cfg.Branch
	res := &PushResult{}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		res.Attempts = attempt
		args := []string{"push"}
		if policy.ForceOnFinal && attempt == policy.Attempts && attempt > 1 {
			args = append(args, "--force")
			res.Forced = true
		}
		args = append(args, remote, refspec)

		_, err := p.git(ctx, "push", args...)
		if err == nil {
			logger.Info().Int("attempt", attempt).Str("branch", p.cfg.Branch).Bool("forced", res.Forced).Msg("Pushed")
			return res, nil
		}
		if errors.IsCanceled(err) {
			return res, err
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Int("attempts", policy.Attempts).Msg("Push failed")

		if attempt == policy.Attempts {
			break
		}
		if policy.RebaseOnReject && rejected(err) {
			if _, rerr := p.git(ctx, "pull", "pull", "--rebase", remote, p.cfg.Branch); rerr != nil {
				logger.Warn().Err(rerr).Msg("Rebase before retry failed")
			} else {
				res.Rebased++
			}
		}
		if err := p.sleep(ctx, policy.Backoff*time.Duration(attempt)); err != nil {
			return res, errors.WrapResource("push", "branch", p.cfg.Branch, errors.ErrCanceled)
		}
	}
	return res, errors.WrapResource("push", "branch", p.cfg.Branch, lastErr)
}

// rejected reports whether a push failed because the remote moved ahead.
func rejected(err error) bool {
	var pe *errors.ProcessError
	if !errors.As(err, &pe) {
		return false
	}
	out := strings.ToLower(pe.Output)
	return strings.Contains(out, "rejected") ||
		strings.Contains(out, "non-fast-forward") ||
		strings.Contains(out, "fetch first")
}

// PublishResult describes a publish run.
type PublishResult struct {
	Committed bool        `json:"committed" yaml:"committed"`
	Commit    string      `json:"commit,omitempty" yaml:"commit,omitempty"`
	Push      *PushResult `json:"push,omitempty" yaml:"push,omitempty"`
}

// Publish stages paths, commits them with message and pushes. With
// nothing to commit it does nothing and returns no error.
func (p *Publisher) Publish(ctx context.Context, paths []string, message string) (*PublishResult, error) {
	if len(paths) == 0 {
		return nil, &errors.ValidationError{Field: "paths", Message: "nothing to publish"}
	}
	if err := p.Add(ctx, paths); err != nil {
		return nil, err
	}
	committed, err := p.Commit(ctx, message)
	if err != nil {
		return nil, err
	}
	res := &PublishResult{Committed: committed}
	if !committed {
		return res, nil
	}
	if res.Commit, err = p.Head(ctx); err != nil {
		return res, err
	}
	res.Push, err = p.Push(ctx)
	return res, err
}
