//go:build e2e && unix

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormRendersOnStartup(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	require.NoError(t, tf.StartApp(), "Failed to start app")
	require.True(t, tf.Ready(), "Should show the form heading")
	require.True(t, tf.SeePlain("Click here or drag an image to upload it"))
	require.True(t, tf.SeePlain("Number of images to retrieve"))
	require.True(t, tf.SeePlain("Search"))
}

func TestBlurShowsValidationErrors(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready())

	// Leaving the empty drop zone validates the image field
	tf.Tab()
	require.True(t, tf.SeePlain("Please upload an image"))

	// Replace the default neighbor count with an out-of-range value
	tf.SendKeys(KeyBack)
	tf.SendKeys("25")
	tf.Tab()
	require.True(t, tf.SeePlain("only up to 20 images may be retrieved"))
}

func TestPastedImageIsPreviewed(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	img, err := tf.CreateTestImage("kitten.png")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready())

	tf.Paste(img)
	require.True(t, tf.SeePlain("kitten.png"), "Should show the accepted file name")
	require.True(t, tf.SeePlain("16x12"), "Should show the decoded dimensions")
}

func TestPastedTextFileIsRejected(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	txt, err := tf.CreateTestFile("notes.txt", "not an image")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready())

	tf.Paste(txt)
	require.True(t, tf.SeePlain("The image must be smaller than 5MB and of type png, jpg, or jpeg"))
}
