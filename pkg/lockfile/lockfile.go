// Package lockfile serializes mutation of shared configuration files across
// concurrent processes using an exclusive on-disk lock file.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/mcpherd/mcpherd/pkg/errors"
	"github.com/mcpherd/mcpherd/pkg/logger"
)

const (
	// staleThreshold is the age past which an undeleted lock file is treated
	// as abandoned and reclaimed.
	staleThreshold = 30 * time.Second

	// maxAttempts bounds the number of acquisition tries before giving up.
	maxAttempts = 5

	initialRetryInterval = 100 * time.Millisecond
	maxRetryInterval     = 2 * time.Second
)

// Handle represents an acquired lock. The caller owns the lock until Release
// is called; the lock is never released implicitly.
type Handle struct {
	path string
	pid  int
}

// Path returns the location of the lock file.
func (h *Handle) Path() string {
	return h.path
}

// Release removes the lock file. It only deletes the file when it still
// records this handle's PID, so a reclaimed lock is never stolen back.
func (h *Handle) Release() error {
	owner, err := readOwnerPID(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect lock file %s: %w", h.path, err)
	}
	if owner != h.pid {
		logger.Warnf("lock file %s is now owned by pid %d, not removing", h.path, owner)
		return nil
	}
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", h.path, err)
	}
	return nil
}

// Acquire takes the exclusive lock at path, retrying with exponential backoff
// while another live process holds it. Stale locks, meaning files older than
// the stale threshold or owned by a dead process, are reclaimed.
func Acquire(ctx context.Context, path string) (*Handle, error) {
	pid := os.Getpid()

	operation := func() (*Handle, error) {
		if err := tryAcquire(path, pid); err != nil {
			if !os.IsExist(err) {
				return nil, backoff.Permanent(fmt.Errorf("failed to create lock file %s: %w", path, err))
			}
			if reclaimIfStale(path) {
				// Retry immediately on the next attempt.
				return nil, fmt.Errorf("reclaimed stale lock file %s", path)
			}
			return nil, fmt.Errorf("lock file %s is held", path)
		}
		return &Handle{path: path, pid: pid}, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = initialRetryInterval
	expBackoff.MaxInterval = maxRetryInterval

	handle, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(maxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debugf("lock acquisition failed (%v), retrying in %s", err, next)
		}),
	)
	if err != nil {
		return nil, errors.NewLockContentionError(
			fmt.Sprintf("could not acquire lock %s: held by %s", path, describeOwner(path)), err)
	}
	return handle, nil
}

// tryAcquire creates the lock file exclusively and records the owner PID.
func tryAcquire(path string, pid int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(pid)); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// reclaimIfStale removes the lock file when it is older than the stale
// threshold or its recorded owner process no longer exists. Returns true if
// the file was removed.
func reclaimIfStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Already gone; the next attempt will race for it.
		return os.IsNotExist(err)
	}

	stale := time.Since(info.ModTime()) > staleThreshold
	if !stale {
		owner, err := readOwnerPID(path)
		if err != nil {
			return false
		}
		alive, err := process.PidExists(int32(owner))
		if err != nil || alive {
			return false
		}
		stale = true
	}

	if stale {
		logger.Warnf("reclaiming stale lock file %s", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return false
		}
		return true
	}
	return false
}

// readOwnerPID reads the PID recorded in the lock file.
func readOwnerPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("lock file %s has malformed contents: %w", path, err)
	}
	return pid, nil
}

// describeOwner names the process currently holding the lock, for inclusion
// in contention errors.
func describeOwner(path string) string {
	pid, err := readOwnerPID(path)
	if err != nil {
		return "unknown process"
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Sprintf("pid %d", pid)
	}
	name, err := proc.Name()
	if err != nil || name == "" {
		return fmt.Sprintf("pid %d", pid)
	}
	return fmt.Sprintf("%s (pid %d)", name, pid)
}
