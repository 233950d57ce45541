package errors

import (
	"bytes"
	stdErrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	require.Equal(t, 0, adapter.ExitCodeFor(nil))
	require.Equal(t, 2, adapter.ExitCodeFor(ValidationError("x").Build()))
	require.Equal(t, 2, adapter.ExitCodeFor(LimitError("x").Build()))
	require.Equal(t, 3, adapter.ExitCodeFor(NotFoundError("x").Build()))
	require.Equal(t, 5, adapter.ExitCodeFor(AuthError("x").Build()))
	require.Equal(t, 8, adapter.ExitCodeFor(NetworkError("x").Build()))
	require.Equal(t, 11, adapter.ExitCodeFor(StorageError("x").Build()))
	require.Equal(t, 1, adapter.ExitCodeFor(stdErrors.New("x")))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	var code int
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(RemoteError("Load failed").WithCause(stdErrors.New("401 Unauthorized")).Build())

	require.Equal(t, 8, code)
	require.Equal(t, "Error: Load failed: 401 Unauthorized\n", out.String())
}

func TestCLIErrorAdapter_FormatErrorShowsHint(t *testing.T) {
	err := ValidationError("Provide server URL and API key").WithHint("kaizen remote set-url <url>").Build()

	require.Equal(t, "Error: Provide server URL and API key\nHint: kaizen remote set-url <url>",
		NewCLIErrorAdapter(false, nil).FormatError(err))
	require.Equal(t, "Error: [validation:error] Provide server URL and API key\nHint: kaizen remote set-url <url>",
		NewCLIErrorAdapter(true, nil).FormatError(err))
	require.Equal(t, "kaizen remote set-url <url>", err.WithContext("k", 1).Hint())
}
