package git

import (
	"context"
	"strings"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// HasChanges reports uncommitted changes, limited to paths when given.
func (p *Publisher) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	out, err := p.git(ctx, "status", args...)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Add stages paths.
func (p *Publisher) Add(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := p.git(ctx, "add", args...)
	return err
}

// hasStaged reports whether the index differs from HEAD.
func (p *Publisher) hasStaged(ctx context.Context) (bool, error) {
	_, err := p.git(ctx, "diff", "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var pe *errors.ProcessError
	if errors.As(err, &pe) && pe.ExitCode == 1 {
		return true, nil
	}
	return false, err
}

// Commit records staged changes. It reports false without error when
// nothing is staged.
func (p *Publisher) Commit(ctx context.Context, message string) (bool, error) {
	if strings.TrimSpace(message) == "" {
		return false, &errors.ValidationError{Field: "message", Message: "cannot be empty"}
	}
	staged, err := p.hasStaged(ctx)
	if err != nil {
		return false, err
	}
	if !staged {
		logging.FromContext(ctx).Info().Msg("Nothing to commit")
		return false, nil
	}

	var args []string
	if p.cfg.AuthorName != "" {
		args = append(args, "-c", "user.name="+p.cfg.AuthorName)
	}
	if p.cfg.AuthorEmail != "" {
		args = append(args, "-c", "user.email="+p.cfg.AuthorEmail)
	}
	args = append(args, "commit", "-m", message)
	if _, err := p.git(ctx, "commit", args...); err != nil {
		return false, err
	}
	return true, nil
}

// Head returns the current commit hash.
func (p *Publisher) Head(ctx context.Context) (string, error) {
	out, err := p.git(ctx, "rev-parse", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
