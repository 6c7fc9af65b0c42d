package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/sheetsync/pkg/errors"
)

// exitError mimics *exec.ExitError.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e exitError) ExitCode() int { return e.code }

type reply struct {
	out string
	err error
}

// fakeRunner answers commands by their first argument, in order.
type fakeRunner struct {
	calls   []string
	replies map[string][]reply
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, strings.Join(args, " "))
	key := args[0]
	if key == "-c" {
		key = "commit"
	}
	queue := f.replies[key]
	if len(queue) == 0 {
		return nil, nil
	}
	r := queue[0]
	f.replies[key] = queue[1:]
	return []byte(r.out), r.err
}

func noSleep(context.Context, time.Duration) error { return nil }

func newPublisher(cfg Config, r *fakeRunner) *Publisher {
	return New(cfg, WithRunner(r), WithSleep(noSleep))
}

func TestRemoteURLAndRedaction(t *testing.T) {
	p := New(Config{Token: "s3cret", Repository: "acme/store"})
	assert.Equal(t, "https://s3cret@github.com/acme/store.git", p.RemoteURL())
	assert.Equal(t, "main", p.Branch())
	assert.Equal(t, "push https://***@github.com/acme/store.git", p.redact("push "+p.RemoteURL()))

	assert.Equal(t, "origin", New(Config{}).RemoteURL())
}

func TestPublishNothingToCommit(t *testing.T) {
	r := &fakeRunner{replies: map[string][]reply{}}
	p := newPublisher(Config{}, r)

	res, err := p.Publish(context.Background(), []string{"changes"}, "Update")
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.Nil(t, res.Push)
	assert.Equal(t, []string{"add -- changes", "diff --cached --quiet"}, r.calls)
}

func TestPublishCommitsAndPushes(t *testing.T) {
	r := &fakeRunner{replies: map[string][]reply{
		"diff":      {{err: exitError{1}}},
		"rev-parse": {{out: "abc123\n"}},
	}}
	p := newPublisher(Config{Branch: "sync", AuthorName: "bot", AuthorEmail: "bot@example.com"}, r)

	res, err := p.Publish(context.Background(), []string{"a.xlsx"}, "Add export")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, "abc123", res.Commit)
	assert.Equal(t, 1, res.Push.Attempts)
	assert.Equal(t, []string{
		"add -- a.xlsx",
		"diff --cached --quiet",
		"-c user.name=bot -c user.email=bot@example.com commit -m Add export",
		"rev-parse HEAD",
		"push origin HEAD:sync",
	}, r.calls)
}

func TestPushRetriesWithRebaseThenForces(t *testing.T) {
	rejectedErr := reply{out: " ! [rejected] HEAD -> main (fetch first)", err: exitError{1}}
	r := &fakeRunner{replies: map[string][]reply{
		"push": {rejectedErr, rejectedErr},
	}}
	p := newPublisher(Config{
		Token:      "tok",
		Repository: "acme/store",
		Policy:     PushPolicy{Attempts: 3, Backoff: time.Second, RebaseOnReject: true, ForceOnFinal: true},
	}, r)

	res, err := p.Push(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 2, res.Rebased)
	assert.True(t, res.Forced)
	url := "https://tok@github.com/acme/store.git"
	assert.Equal(t, []string{
		"push " + url + " HEAD:main",
		"pull --rebase " + url + " main",
		"push " + url + " HEAD:main",
		"pull --rebase " + url + " main",
		"push --force " + url + " HEAD:main",
	}, r.calls)
}

func TestPushExhaustsAttempts(t *testing.T) {
	fail := reply{out: "fatal: could not read from remote tok", err: exitError{128}}
	r := &fakeRunner{replies: map[string][]reply{"push": {fail, fail}}}
	p := newPublisher(Config{Token: "tok", Repository: "acme/store", Policy: PushPolicy{Attempts: 2, RebaseOnReject: true}}, r)

	res, err := p.Push(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 0, res.Rebased, "only rejections trigger a rebase")
	assert.NotContains(t, err.Error(), "tok@")
	assert.Contains(t, err.Error(), "***")

	var pe *pkgerrors.ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 128, pe.ExitCode)
}

func TestPushCanceledDuringBackoff(t *testing.T) {
	r := &fakeRunner{replies: map[string][]reply{"push": {{err: exitError{1}}}}}
	p := New(Config{Policy: PushPolicy{Attempts: 2, Backoff: time.Hour}}, WithRunner(r))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Push(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCanceled(err))
}

func TestHasChanges(t *testing.T) {
	r := &fakeRunner{replies: map[string][]reply{"status": {{out: " M data/Pages.json\n"}, {out: ""}}}}
	p := newPublisher(Config{}, r)

	changed, err := p.HasChanges(context.Background(), "data")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.HasChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"status --porcelain -- data", "status --porcelain"}, r.calls)
}

func TestCommitValidation(t *testing.T) {
	p := newPublisher(Config{}, &fakeRunner{replies: map[string][]reply{}})
	_, err := p.Commit(context.Background(), "  ")
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = p.Publish(context.Background(), nil, "msg")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestDefaultPushPolicy(t *testing.T) {
	policy := DefaultPushPolicy()
	assert.Equal(t, 3, policy.Attempts)
	assert.True(t, policy.RebaseOnReject)
	assert.False(t, policy.ForceOnFinal)
}
