package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
)

// Lock marks a section directory as in use by one invocation.
type Lock struct {
	// RunID identifies the holder in the lock file and in logs.
	RunID string
	path  string
}

// LockedError reports a directory already held by another invocation.
type LockedError struct {
	Path  string
	Owner string
}

// Error implements the error interface.
func (e *LockedError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("%s is locked by another sheetsync run (%s); remove the lock file if that run is gone", e.Path, e.Owner)
	}
	return fmt.Sprintf("%s is locked by another sheetsync run; remove the lock file if that run is gone", e.Path)
}

// Is implements errors.Is support.
func (e *LockedError) Is(target error) bool {
	return target == errors.ErrLocked
}

// Lock takes the directory lock. It fails fast with a LockedError when
// the lock file already exists.
func (d *Dir) Lock() (*Lock, error) {
	path := filepath.Join(d.path, constants.LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		if os.IsExist(err) {
			owner, _ := os.ReadFile(path)
			return nil, &LockedError{Path: d.path, Owner: strings.TrimSpace(string(owner))}
		}
		return nil, errors.WrapIO("create", path, err)
	}
	runID := uuid.NewString()
	_, werr := fmt.Fprintf(f, "run %s pid %s since %s\n", runID, strconv.Itoa(os.Getpid()), utc.Now().Format(constants.TimeFormatFilename))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
		return nil, errors.WrapIO("write", path, werr)
	}
	return &Lock{RunID: runID, path: path}, nil
}

// Release removes the lock file. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", "lock", err)
	}
	return nil
}
