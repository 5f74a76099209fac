package model

import (
	"net/http"
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/require"
)

func TestStatusCodeByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindMissingCredential, http.StatusUnauthorized},
		{KindNoAvailableModel, http.StatusNotFound},
		{KindUpstreamHTTPError, http.StatusBadGateway},
		{KindEmptyResponse, http.StatusBadGateway},
		{KindTransportError, http.StatusBadGateway},
		{KindValidationError, http.StatusBadRequest},
		{KindAllUpstreamsFailed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := NewDispatchError(tc.kind, "boom", nil)
		require.Equal(t, tc.want, err.StatusCode(), "kind %s", tc.kind)
	}
}

func TestNewDispatchErrorWrapsCause(t *testing.T) {
	inner := &DispatchError{Kind: KindTransportError, Message: "dial failed"}
	err := NewDispatchError(KindUpstreamHTTPError, "upstream failed", inner)

	require.Error(t, err)
	require.Contains(t, err.Error(), "upstream failed")
	require.Contains(t, err.Error(), "dial failed")
	require.NotNil(t, err.Unwrap())
}

func TestAsDispatchErrorFindsWrappedError(t *testing.T) {
	de := NewDispatchError(KindEmptyResponse, "empty choices", nil)

	found, ok := AsDispatchError(de)
	require.True(t, ok)
	require.Equal(t, KindEmptyResponse, found.Kind)
}

func TestAsDispatchErrorFalseForPlainError(t *testing.T) {
	_, ok := AsDispatchError(stderrors.New("plain error"))
	require.False(t, ok)
}
