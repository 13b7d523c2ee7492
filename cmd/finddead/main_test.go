package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	app := newApp()
	var outBuf, errBuf bytes.Buffer
	app.Writer = &outBuf
	app.ErrWriter = &errBuf
	err = app.Run(append([]string{"finddead"}, args...))
	return outBuf.String(), errBuf.String(), err
}

func TestScanCommand_SingleFixture(t *testing.T) {
	stdout, _, err := runApp(t, "scan", "--root", "/proj", "testdata/fixtures/simple.json")
	require.NoError(t, err)
	assert.Equal(t, "1 a.cpp:3:5\n0 a.cpp:10:1\n1 a.cpp:20:1\n", stdout)
}

func TestScanCommand_JSONOutput(t *testing.T) {
	stdout, _, err := runApp(t, "scan", "--root", "/proj", "--json", "testdata/fixtures/simple.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"location": "a.cpp:3:5"`)
	assert.Contains(t, stdout, `"used": true`)
}

func TestScanCommand_ExcludedSubpath(t *testing.T) {
	stdout, _, err := runApp(t, "scan", "--root", "/proj", "--exclude", "a.cpp", "testdata/fixtures/simple.json")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestScanCommand_NoFilesGivenIsAnError(t *testing.T) {
	_, _, err := runApp(t, "scan", "--root", "/proj")
	assert.Error(t, err)
}

func TestScanCommand_MissingFileReportsFailureButExitsNonZero(t *testing.T) {
	_, stderr, err := runApp(t, "scan", "--root", "/proj", "testdata/fixtures/does-not-exist.json")
	assert.Error(t, err)
	assert.Contains(t, stderr, "files failed")
}

func TestScanCommand_MultiFileUnion(t *testing.T) {
	stdout, _, err := runApp(t, "scan", "--root", "/proj",
		"testdata/fixtures/simple.json", "testdata/fixtures/simple.json")
	require.NoError(t, err)
	// Scanning the same fixture twice unions to the same three records.
	assert.Equal(t, "1 a.cpp:3:5\n0 a.cpp:10:1\n1 a.cpp:20:1\n", stdout)
}
