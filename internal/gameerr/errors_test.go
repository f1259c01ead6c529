package gameerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := WithMetadata(CodeInsufficientFunds, "need 1200 credits", map[string]string{"cost": "1200"})
	wrapped := fmt.Errorf("enhance: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInsufficientFunds))
	assert.False(t, errors.Is(wrapped, ErrMaxLevelReached))
	assert.Equal(t, CodeInsufficientFunds, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("yaml: line 3")
	err := Wrap(CodeInvalidConfig, "load balance", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "load balance: yaml: line 3", err.Error())
}

func TestGRPCStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *Error
		want codes.Code
	}{
		{ErrMaxLevelReached, codes.FailedPrecondition},
		{ErrInvalidItemState, codes.InvalidArgument},
		{ErrInvalidRequest, codes.InvalidArgument},
		{ErrInvalidConfig, codes.Internal},
		{New(CodeUnknown, "boom"), codes.Unknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			t.Parallel()
			st, ok := status.FromError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.want, st.Code())

			require.Len(t, st.Details(), 1)
			info, ok := st.Details()[0].(*errdetails.ErrorInfo)
			require.True(t, ok)
			assert.Equal(t, string(tt.err.Code), info.Reason)
			assert.Equal(t, Domain, info.Domain)
		})
	}
}
