package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
)

type adjustBody struct {
	Delta int `json:"delta" validate:"ne=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	var body adjustBody
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"delta":-1}`))
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, -1, body.Delta)
}

func TestDecodeJSONBodyRejectsZeroDelta(t *testing.T) {
	var body adjustBody
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"delta":0}`))
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"delta": "must not be 0"}, typed.Details())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var body adjustBody
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"delta":1,"extra":true}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingInput(t *testing.T) {
	for _, raw := range []string{"", `{"delta":1}{"delta":2}`} {
		var body adjustBody
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(raw))
		assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation), "body %q", raw)
	}
}

func TestParsePathInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "0", want: 0},
		{raw: "12", want: 12},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("index", tt.raw)
		req := httptest.NewRequest(http.MethodPatch, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		got, err := ParsePathInt(req, "index")
		if tt.wantErr {
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode("  3017620422003 ")
	require.NoError(t, err)
	assert.Equal(t, "3017620422003", code)

	for _, bad := range []string{"", "   ", "30176 20422003", "abc\x00", strings.Repeat("9", maxCodeLen+1)} {
		_, err := NormalizeCode(bad)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %q", bad)
	}
}
