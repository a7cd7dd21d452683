package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeChanges(t *testing.T) {
	schema := AnalyzeChanges(ChangeEvent{Type: ChangeTypeSchema, Paths: []string{"s.yaml"}})
	assert.True(t, schema.NeedSchemaReload)
	assert.True(t, schema.NeedReparse)
	assert.True(t, schema.NeedReencode)
	assert.Equal(t, []string{"s.yaml"}, schema.ChangedFiles)

	artifact := AnalyzeChanges(ChangeEvent{Type: ChangeTypeInput})
	assert.False(t, artifact.NeedSchemaReload)
	assert.False(t, artifact.NeedReparse)
	assert.True(t, artifact.NeedReencode)
}

func TestDebouncer_Batches(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 20*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeInput, Paths: []string{"a.json"}}
	in <- ChangeEvent{Type: ChangeTypeInput, Paths: []string{"a.json"}}
	in <- ChangeEvent{Type: ChangeTypeSchema, Paths: []string{"s.yaml"}}

	first := receive(t, d.Output())
	assert.Equal(t, ChangeTypeSchema, first.Type)
	second := receive(t, d.Output())
	assert.Equal(t, ChangeTypeInput, second.Type)
	assert.Equal(t, []string{"a.json"}, second.Paths)

	select {
	case ev := <-d.Output():
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncer_MaxWait(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, time.Hour, 30*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeInput, Paths: []string{"a.json"}}
	ev := receive(t, d.Output())
	assert.Equal(t, ChangeTypeInput, ev.Type)
}

func TestDebouncer_FlushOnClose(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeTypeSchema, Paths: []string{"s.yaml"}}
	close(in)

	ev := receive(t, d.Output())
	assert.Equal(t, ChangeTypeSchema, ev.Type)
	_, open := <-d.Output()
	assert.False(t, open)
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "artifact.json")
	other := filepath.Join(dir, "notes.txt")

	fw, err := NewFileWatcher([]string{artifact})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(artifact, []byte("{}"), 0644))

	ev := receive(t, fw.Events())
	assert.Equal(t, ChangeTypeInput, ev.Type)
	assert.Equal(t, "input", ev.Type.String())

	cancel()
	for range fw.Events() {
	}
}

func receive(t *testing.T, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return ChangeEvent{}
}
