package process

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func sh(script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}}
}

func TestChain_StreamsFirstIntoSecond(t *testing.T) {
	requireShell(t)

	out := filepath.Join(t.TempDir(), "out.txt")
	chain := Chain{
		First:  sh("printf 'hello pipe'"),
		Second: Command{Name: "sh", Args: []string{"-c", `cat > "$1"`, "sh", out}},
	}

	res, err := chain.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Success() || res.FirstExit != 0 {
		t.Fatalf("unexpected exit codes: %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello pipe" {
		t.Errorf("second stage received %q", data)
	}
}

func TestChain_ExitCodes(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name       string
		first      string
		second     string
		wantFirst  int
		wantSecond int
	}{
		{"both succeed", "echo x", "cat >/dev/null", 0, 0},
		{"second fails", "echo x", "cat >/dev/null; exit 3", 0, 3},
		{"first failure masked by second", "echo x; exit 2", "cat >/dev/null", 2, 0},
		{"both fail", "exit 4", "cat >/dev/null; exit 5", 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Chain{First: sh(tt.first), Second: sh(tt.second)}.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.FirstExit != tt.wantFirst || res.SecondExit != tt.wantSecond {
				t.Errorf("exit codes = (%d, %d), want (%d, %d)", res.FirstExit, res.SecondExit, tt.wantFirst, tt.wantSecond)
			}
			if res.ExitCode() != tt.wantSecond {
				t.Errorf("ExitCode() = %d, want %d", res.ExitCode(), tt.wantSecond)
			}
		})
	}
}

func TestChain_SecondExitsEarly(t *testing.T) {
	requireShell(t)

	// The first stage writes far more than a pipe buffer; the second stage
	// never reads. Run must still return once both are gone.
	chain := Chain{
		First:  sh("yes | head -c 10000000"),
		Second: sh("exit 1"),
	}

	done := make(chan struct{})
	var res ChainResult
	var err error
	go func() {
		res, err = chain.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after second stage exited")
	}
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Success() {
		t.Error("expected failure from second stage")
	}
}

func TestChain_CapturesStderr(t *testing.T) {
	requireShell(t)

	res, err := Chain{
		First:  sh("echo first-err >&2"),
		Second: sh("cat >/dev/null; echo second-err >&2; exit 1"),
	}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.FirstStderr, "first-err") || !strings.Contains(res.SecondStderr, "second-err") {
		t.Errorf("stderr not captured: %+v", res)
	}
}

func TestChain_StartFailure(t *testing.T) {
	requireShell(t)

	missing := filepath.Join(t.TempDir(), "missing")

	if _, err := (Chain{First: Command{Name: missing}, Second: sh("cat")}).Run(context.Background()); err == nil {
		t.Error("expected error when first stage cannot start")
	}

	start := time.Now()
	_, err := Chain{First: sh("exec sleep 30"), Second: Command{Name: missing}}.Run(context.Background())
	if err == nil {
		t.Error("expected error when second stage cannot start")
	}
	if time.Since(start) > 10*time.Second {
		t.Error("first stage was not killed after second failed to start")
	}
}

func TestChain_ContextCancel(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res, err := Chain{First: sh("exec sleep 30"), Second: sh("cat >/dev/null")}.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.FirstExit == 0 {
		t.Errorf("first stage should have been killed, got %+v", res)
	}
}

func TestCommand_String(t *testing.T) {
	c := Command{Name: "lame", Args: []string{"-V0", "-", "out.mp3"}}
	if got := c.String(); got != "lame -V0 - out.mp3" {
		t.Errorf("String() = %q", got)
	}
}

func TestTailBuffer(t *testing.T) {
	tb := newTailBuffer(5)
	tb.Write([]byte("abc"))
	tb.Write([]byte("defg"))
	if got := tb.String(); got != "cdefg" {
		t.Errorf("got %q, want cdefg", got)
	}
	tb.Write([]byte("0123456789"))
	if got := tb.String(); got != "56789" {
		t.Errorf("got %q, want 56789", got)
	}
}
