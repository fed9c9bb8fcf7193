package main

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
)

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testCommand returns a command whose output streams are captured.
func testCommand(ctx context.Context) (*cobra.Command, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(ctx)
	return cmd, stdout, stderr
}

// resetFlags restores every global flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, verbose, logLevel = "", false, "error"
	checkFlags.files, checkFlags.format = nil, "text"
	expandFlags.files, expandFlags.n, expandFlags.seed = nil, 0, -1
	expandFlags.workers, expandFlags.format, expandFlags.progress = 0, "", false
	spaceFlags.files, spaceFlags.format = nil, "text"
	watchFlags.files, watchFlags.listen = nil, ""
}
