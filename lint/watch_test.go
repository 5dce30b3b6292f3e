package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	old := watchDebounce
	watchDebounce = 20 * time.Millisecond
	t.Cleanup(func() { watchDebounce = old })

	dir := t.TempDir()
	watched := filepath.Join(dir, "codemagic.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("workflows: {}\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{watched}, nil, func(changed []string) {
			select {
			case changes <- changed:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory; rewrite until seen.
	var got []string
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case got = <-changes:
			break loop
		case <-tick.C:
			require.NoError(t, os.WriteFile(other, []byte("x: 1\n"), 0o644))
			require.NoError(t, os.WriteFile(watched, []byte("workflows: {a: {}}\n"), 0o644))
		case <-ctx.Done():
			t.Fatal("no change reported")
		}
	}
	assert.Equal(t, []string{watched}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_BadDirectory(t *testing.T) {
	err := Watch(context.Background(), []string{filepath.Join(t.TempDir(), "nope", "x.yaml")}, nil, func([]string) {})
	assert.Error(t, err)
}
