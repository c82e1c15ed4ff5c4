package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    interface{}
	}{
		{"not found", NotFound("order not found"), http.StatusNotFound, "order not found"},
		{"conflict wrapped", fmt.Errorf("refund: %w", Conflict("nothing left to refund")), http.StatusConflict, "nothing left to refund"},
		{"invalid keeps message only", InvalidArgument("bad body", New("eof")), http.StatusBadRequest, "bad body"},
		{"echo error passthrough", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot, "teapot"},
		{"plain error hidden", New("db password=secret"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTTPError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(NotFound("user"), "load user")
	assert.Equal(t, ErrNotFound, CodeOf(err))
	assert.Equal(t, ErrInternal, CodeOf(Wrap(New("boom"), "x")))
	assert.Nil(t, Wrap(nil, "x"))
}

func TestFromHTTPError(t *testing.T) {
	err := FromHTTPError(echo.NewHTTPError(http.StatusUnauthorized, "missing token"))
	assert.Equal(t, ErrUnauthenticated, CodeOf(err))
	assert.Equal(t, "missing token", err.Error())
}
