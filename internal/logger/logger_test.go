package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, logging.WARNING, ParseLevel("warning"))
	assert.Equal(t, logging.INFO, ParseLevel("chatty"))
}

func TestInitLogger_FileBackendRecordsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	InitLogger(logging.ERROR, path)
	t.Cleanup(func() {
		CloseLogger()
		InitLogger(logging.INFO, "")
	})

	Debugf("debug line %d", 1)
	Errorf("error line %d", 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "debug line 1"), out)
	assert.True(t, strings.Contains(out, "error line 2"), out)
}
