package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":   {NewValidation("bad", nil), http.StatusBadRequest},
		"not found":    {NewNotFound("order", "x"), http.StatusNotFound},
		"conflict":     {NewConflict("twice"), http.StatusConflict},
		"unauthorized": {NewUnauthorized("who"), http.StatusUnauthorized},
		"forbidden":    {NewForbidden("no", nil), http.StatusForbidden},
		"upstream":     {NewUpstream("stripe", stderrors.New("timeout")), http.StatusBadGateway},
		"plain error":  {stderrors.New("boom"), http.StatusInternalServerError},
		"unknown code": {&AppError{Code: "TEAPOT"}, http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestToJSON_HidesInternalMessage(t *testing.T) {
	code, body := ToJSON(NewInternal("db password rejected", stderrors.New("auth")), "trace-1")
	assert.Equal(t, http.StatusInternalServerError, code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.Equal(t, "An internal error occurred", resp.Error.Message)
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestWrap_KeepsCode(t *testing.T) {
	err := Wrap(NewConflict("already confirmed"), "seller delivery")
	assert.True(t, Is(err, CodeConflict))
	assert.Equal(t, "seller delivery: already confirmed", err.Message)

	err = Wrap(stderrors.New("io"), "save")
	assert.True(t, Is(err, CodeInternal))
}

func TestGRPCRoundTrip(t *testing.T) {
	st := GRPCStatus(NewNotFound("profile", "p1"))
	assert.Equal(t, codes.NotFound, status.Code(st))

	back := FromGRPCStatus(st)
	assert.Equal(t, CodeNotFound, back.Code)

	back = FromGRPCStatus(status.Error(codes.DeadlineExceeded, "slow"))
	assert.Equal(t, CodeUpstream, back.Code)
}
