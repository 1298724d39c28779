// Package lock guards a logical job identity within a process (MutexMap)
// and across processes sharing one database (FileLock).
package lock

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

var ErrLocked = errors.New("lock: held by another owner")

type MutexMap struct {
	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

func NewMutexMap() *MutexMap {
	return &MutexMap{
		mutexes: make(map[string]*sync.Mutex),
	}
}

func (m *MutexMap) TryLock(key string) bool {
	return m.getMutex(key).TryLock()
}

func (m *MutexMap) Unlock(key string) {
	m.getMutex(key).Unlock()
}

func (m *MutexMap) getMutex(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mu, ok := m.mutexes[key]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	m.mutexes[key] = mu
	return mu
}

// FileLock is an advisory flock on path. The file is left in place on
// Unlock so every contender locks the same inode.
type FileLock struct {
	path string
	file *os.File
}

func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

func (fl *FileLock) Path() string {
	return fl.path
}

func (fl *FileLock) TryLock() error {
	if fl.file != nil {
		return fmt.Errorf("%w: %s already locked by this handle", ErrLocked, fl.path)
	}
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("%w: %s", ErrLocked, fl.path)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	if err := f.Truncate(0); err != nil {
		fl.abandon(f)
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		fl.abandon(f)
		return fmt.Errorf("write PID to lock file: %w", err)
	}

	fl.file = f
	return nil
}

func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}
	f := fl.file
	fl.file = nil

	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("release lock: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close lock file: %w", err)
	}
	return nil
}

func (fl *FileLock) abandon(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
}

// Lease is held for the duration of one job run: the in-process mutex for
// key plus, when path is set, the cross-process file lock.
type Lease struct {
	keys *MutexMap
	key  string
	file *FileLock
}

func NewLease(keys *MutexMap, key, path string) *Lease {
	l := &Lease{keys: keys, key: key}
	if strings.TrimSpace(path) != "" {
		l.file = NewFileLock(path)
	}
	return l
}

func (l *Lease) TryAcquire() error {
	if !l.keys.TryLock(l.key) {
		return fmt.Errorf("%w: job %s is running in this process", ErrLocked, l.key)
	}
	if l.file == nil {
		return nil
	}
	if err := l.file.TryLock(); err != nil {
		l.keys.Unlock(l.key)
		return err
	}
	return nil
}

func (l *Lease) Release() error {
	defer l.keys.Unlock(l.key)
	if l.file == nil {
		return nil
	}
	return l.file.Unlock()
}
