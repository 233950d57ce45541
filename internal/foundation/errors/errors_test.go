package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "kaizen.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		require.Equal(t, "kaizen.yaml", file)
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		err := ValidationError("bad input").Build()
		wrapped := fmt.Errorf("outer: %w", err)

		require.True(t, IsClassified(wrapped))
		require.True(t, HasCategory(wrapped, CategoryValidation))
		require.Equal(t, CategoryValidation, GetCategory(wrapped))
		require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := NotFoundError("task not found").Build()
		derived := base.WithContext("id", "d1t0")

		_, ok := base.Context().Get("id")
		require.False(t, ok)
		id, _ := derived.Context().GetString("id")
		require.Equal(t, "d1t0", id)
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("connection refused")
		err := WrapError(originalErr, CategoryNetwork, "save to server failed").
			Warning().
			Manual().
			WithContext("url", "http://localhost:3000").
			Build()

		require.Equal(t, SeverityWarning, err.Severity())
		require.Equal(t, RetryManual, err.RetryStrategy())
		require.ErrorIs(t, err, originalErr)
		require.True(t, err.CanRetry())
		require.Equal(t, "save to server failed: connection refused", err.UserMessage())
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			retry    RetryStrategy
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, RetryNever},
			{"ValidationError", ValidationError("test"), CategoryValidation, RetryUserAction},
			{"SchemaError", SchemaError("test"), CategorySchema, RetryUserAction},
			{"AuthError", AuthError("test"), CategoryAuth, RetryUserAction},
			{"NetworkError", NetworkError("test"), CategoryNetwork, RetryManual},
			{"RemoteError", RemoteError("test"), CategoryRemote, RetryManual},
			{"StorageError", StorageError("test"), CategoryStorage, RetryNever},
			{"InternalError", InternalError("test"), CategoryInternal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				require.Equal(t, tt.category, err.Category())
				require.Equal(t, tt.retry, err.RetryStrategy())
			})
		}
	})
}
