package dispatch

import (
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"holter-distributor/internal/config"
	"holter-distributor/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)

const testDay = "10.03.2026"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func testPolicy(doctors ...config.DoctorConfig) *config.Policy {
	return &config.Policy{
		InputPath:       "/in",
		OutputPath:      "/out",
		RejectedPath:    "/rejected",
		StationLimitKey: "station",
		Doctors:         doctors,
	}
}

func touch(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte("zhr"), 0o644))
}

func exists(fsys afero.Fs, path string) bool {
	ok, _ := afero.Exists(fsys, path)
	return ok
}

func newTestDispatcher(fsys afero.Fs, policy *config.Policy, now time.Time) *Dispatcher {
	return NewDispatcher(
		config.StaticProvider{Policy: policy},
		storage.New(fsys),
		discardLogger(),
		WithClock(func() time.Time { return now }),
		WithRand(rand.New(rand.NewSource(1))),
		WithIDGenerator(func() string { return "pass-1" }),
	)
}

// faultyFs injects failures for paths containing one of the configured fragments.
type faultyFs struct {
	afero.Fs
	failRename []string
	failOpen   []string
}

func matches(path string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(path, f) {
			return true
		}
	}
	return false
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if matches(oldname, f.failRename) || matches(newname, f.failRename) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	if matches(name, f.failOpen) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}
