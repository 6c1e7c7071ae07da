//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplicationExit(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	require.NoError(t, tf.StartApp(), "Failed to start app")
	require.True(t, tf.Ready(), "Should render the form")

	t.Logf("Sending 'q' to quit application...")
	tf.Quit()
	if err := tf.WaitExit(1500 * time.Millisecond); err != nil {
		t.Logf("'q' didn't work within 1.5 seconds, using Ctrl+C")
		tf.DumpTailOnFail(t, "exit-failure", 4096)
		tf.SendCtrlC()
		require.NoError(t, tf.WaitExit(750*time.Millisecond), "Application did not exit")
	}
}

func TestCtrlCExitsFromNeighborsField(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready())

	// 'q' is text inside the neighbors field, ctrl+c still quits
	tf.Tab()
	tf.SendKeys("q")
	tf.SendCtrlC()
	require.NoError(t, tf.WaitExit(2*time.Second))
}
