package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := New(KindParamError, "missing song id")
	assert.Equal(t, "PARAM_ERROR: missing song id", err.Error())

	wrapped := Wrap(errors.New("dial tcp: refused"), KindNetworkError, "request failed")
	assert.Equal(t, "NETWORK_ERROR: request failed: dial tcp: refused", wrapped.Error())
}

func TestError_WithDetails(t *testing.T) {
	err := New(KindAPIError, "unexpected code").WithDetails(map[string]interface{}{"code": 400})
	assert.NotNil(t, err.Details)
}

func TestError_WithError(t *testing.T) {
	base := errors.New("base error")
	err := New(KindNetworkError, "Test").WithError(base)
	assert.ErrorIs(t, err, base)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("resolve: %w", New(KindNoAudioURL, "no url"))

	assert.Equal(t, KindNoAudioURL, KindOf(err))
	assert.True(t, IsKind(err, KindNoAudioURL))
	assert.False(t, IsKind(err, KindNoData))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindNoData))
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindParamError, http.StatusBadRequest},
		{KindUnsupportedPlatform, http.StatusNotImplemented},
		{KindNetworkTimeout, http.StatusGatewayTimeout},
		{KindNoAudioURL, http.StatusNotFound},
		{KindExhausted, http.StatusBadGateway},
		{KindServiceDisabled, http.StatusServiceUnavailable},
		{Kind("OTHER"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, GetHTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(New(KindParamError, "x")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("standard error")))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus(&Error{Kind: KindAPIFailed}))
}

func TestKinds_Closed(t *testing.T) {
	seen := make(map[Kind]bool)
	for _, k := range Kinds {
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
	assert.Len(t, Kinds, 14)
}
