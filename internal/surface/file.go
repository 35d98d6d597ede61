package surface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/checkin/internal/engine"
)

// FileState is the document written for status bars and widgets.
type FileState struct {
	Handle      string    `yaml:"handle"`
	NextCheckIn time.Time `yaml:"next_check_in"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

// File mirrors the countdown into a YAML file. The file exists only while
// a session is running.
type File struct {
	mu     sync.Mutex
	path   string
	handle engine.SurfaceHandle
	now    func() time.Time
}

func NewFile(path string) *File {
	return &File{path: path, now: func() time.Time { return time.Now().UTC() }}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Start(_ context.Context, next time.Time) (engine.SurfaceHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := engine.SurfaceHandle(uuid.NewString())
	if err := f.write(h, next); err != nil {
		return "", err
	}
	f.handle = h
	return h, nil
}

func (f *File) Update(_ context.Context, h engine.SurfaceHandle, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h != f.handle || h == "" {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return f.write(h, next)
}

func (f *File) End(_ context.Context, h engine.SurfaceHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h != f.handle || h == "" {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	f.handle = ""
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove surface file: %w", err)
	}
	return nil
}

func (f *File) write(h engine.SurfaceHandle, next time.Time) error {
	if strings.TrimSpace(f.path) == "" {
		return errors.New("surface: file path is empty")
	}
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create surface dir: %w", err)
		}
	}
	payload, err := yaml.Marshal(FileState{Handle: string(h), NextCheckIn: next.UTC(), UpdatedAt: f.now()})
	if err != nil {
		return fmt.Errorf("marshal surface state: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write surface state: %w", err)
	}
	return os.Rename(tmp, f.path)
}

// ReadFile loads a surface file. ok is false when no session is running.
func ReadFile(path string) (FileState, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileState{}, false, nil
		}
		return FileState{}, false, err
	}
	var st FileState
	if err := yaml.Unmarshal(raw, &st); err != nil {
		return FileState{}, false, fmt.Errorf("decode surface state: %w", err)
	}
	return st, true, nil
}
