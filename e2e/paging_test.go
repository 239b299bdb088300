//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWithFiles(t *testing.T, n int, args ...string) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")
	require.NoError(t, tf.CreateTextFiles(n))

	require.NoError(t, tf.StartApp(append(args, workspace)...), "Failed to start app")
	require.True(t, tf.Ready(), "Should receive ready signal")
	return tf
}

func TestStartsOnFirstPage(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 12)

	require.True(t, tf.SeePlain("lazypager"), "Should show title")
	require.True(t, tf.SeePlain("page-000.txt"), "Should show the first file")
	require.True(t, tf.SeePlain("this is page number 0"), "Should show the preview")
	require.True(t, tf.SeePlain("1/12"), "Should show the position")
}

func TestSwipeAndJump(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 12)

	require.NoError(t, tf.Next())
	require.True(t, tf.SeePlain("2/12"), "Should move to the second page")
	require.True(t, tf.SeePlain("this is page number 1"))

	require.NoError(t, tf.Prev())
	require.True(t, tf.OutputContainsPlain("1/12", 3*time.Second))

	require.NoError(t, tf.Jump(10))
	require.True(t, tf.SeePlain("10/12"), "Should jump to page 10")
	require.True(t, tf.SeePlain("this is page number 9"))

	require.NoError(t, tf.SendKeys(KeyLast))
	require.True(t, tf.SeePlain("12/12"), "Should jump to the last page")
}

func TestSettleIsLogged(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 5)

	require.NoError(t, tf.Next())
	require.True(t, tf.SeePlain("2/5"))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(tf.LogPath())
		return err == nil && strings.Contains(string(data), "settled")
	}, 3*time.Second, 50*time.Millisecond, "settle should reach the log")
}

func TestLoadMoreRevealsBatches(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 30, "--batch", "10")

	require.True(t, tf.SeePlain("1/10"), "Should reveal the first batch")
	require.True(t, tf.SeePlain("30 files on disk"))

	require.NoError(t, tf.Jump(8))
	require.True(t, tf.SeePlain("8/20"), "Should reveal the next batch near the end")
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 3)
	require.True(t, tf.SeePlain("1/3"))

	require.NoError(t, tf.WriteFile("page-100.txt", "a late arrival\n"))
	require.True(t, tf.OutputContainsPlain("1/4", 5*time.Second), "Should see the new file")

	require.NoError(t, tf.Jump(4))
	require.True(t, tf.SeePlain("a late arrival"))

	require.NoError(t, tf.RemoveFile("page-100.txt"))
	require.True(t, tf.OutputContainsPlain("3/3", 5*time.Second), "Should clamp after the file is removed")
}

func TestStartFlagAndVerticalDirection(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 12, "--start", "4", "--direction", "vertical")

	require.True(t, tf.SeePlain("5/12"), "Should start on the requested page")
	require.NoError(t, tf.SendKeys("j"))
	require.True(t, tf.SeePlain("6/12"), "j should page down")
}

func TestTapHidesChrome(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 3)

	require.NoError(t, tf.SendKeys(KeyTap))
	require.NoError(t, tf.Next())
	require.True(t, tf.SeePlain("this is page number 1"))

	require.NoError(t, tf.SendKeys(KeyTap))
	require.True(t, tf.SeePlain("2/3"), "Status should come back")
}

func TestConfigWrittenOnFirstRun(t *testing.T) {
	t.Parallel()
	tf := startWithFiles(t, 3)

	configPath := filepath.Join(tf.workspace, ".lazypager.toml")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(configPath)
		return err == nil && strings.Contains(string(data), "preload_radius")
	}, 3*time.Second, 50*time.Millisecond, "config should be written")

	require.True(t, tf.SeePlain("1/3"), "config file must not show up as a page")
}

func TestConfigIsHonoured(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	require.NoError(t, tf.CreateTextFiles(12))
	require.NoError(t, tf.WriteFile(".lazypager.toml", `version = 1
[source]
batch_size = 5
`))

	require.NoError(t, tf.StartApp(workspace))
	require.True(t, tf.Ready())
	require.True(t, tf.SeePlain("1/5"), "batch size should come from the config")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	require.NoError(t, tf.WriteFile(".lazypager.toml", "[pager]\nunknown_key = 1\n"))

	require.NoError(t, tf.StartApp(workspace))
	require.True(t, tf.OutputContainsPlain("failed to parse config", 3*time.Second), "Should report the bad config")
}

func TestApplicationExit(t *testing.T) {
	for _, tc := range []struct {
		name string
		key  string
	}{
		{"quit", KeyQuit},
		{"dismiss", KeyEsc},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tf := startWithFiles(t, 3)

			done := make(chan error, 1)
			go func() {
				done <- tf.cmd.Wait()
			}()
			require.NoError(t, tf.SendKeys(tc.key))

			select {
			case err := <-done:
				require.NoError(t, err)
				tf.cmd = nil
			case <-time.After(3 * time.Second):
				tf.DumpTailOnFail(t, "exit-failure", 4096)
				t.Fatal("app did not exit")
			}
		})
	}
}
