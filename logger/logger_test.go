package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_WritesJSONToFile(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop().Sugar() })

	path := filepath.Join(t.TempDir(), "nested", "docchat.log")
	require.NoError(t, Init(path, false))

	Log.Infow("query dispatched", "request", "abc")
	Log.Debugw("hidden below info")
	Sync()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"msg":"query dispatched"`)
	assert.Contains(t, string(contents), `"request":"abc"`)
	assert.NotContains(t, string(contents), "hidden below info")
}

func TestInit_VerboseIncludesDebug(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop().Sugar() })

	path := filepath.Join(t.TempDir(), "docchat.log")
	require.NoError(t, Init(path, true))

	Log.Debugw("preview cache hit")
	Sync()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "preview cache hit")
}

func TestStatus_NeverBlocks(t *testing.T) {
	t.Cleanup(func() {
		for len(StatusChan) > 0 {
			<-StatusChan
		}
	})

	for i := 0; i < cap(StatusChan)+5; i++ {
		Status("busy")
	}

	assert.Equal(t, cap(StatusChan), len(StatusChan))
	assert.Equal(t, "busy", <-StatusChan)
}
