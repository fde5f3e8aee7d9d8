package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenERAPI_Rate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/JPY":
			_, _ = w.Write([]byte(`{"result":"success","base_code":"JPY","rates":{"INR":0.5612,"USD":0.0067}}`))
		case "/XXX":
			_, _ = w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
		case "/BAD":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	src := NewOpenERAPI(server.URL, time.Second)
	ctx := context.Background()

	rate, err := src.Rate(ctx, "JPY", "INR")
	require.NoError(t, err)
	assert.Equal(t, 0.5612, rate)

	_, err = src.Rate(ctx, "JPY", "EUR")
	assert.ErrorIs(t, err, ErrRateUnavailable)

	_, err = src.Rate(ctx, "XXX", "INR")
	assert.ErrorIs(t, err, ErrRateUnavailable)

	_, err = src.Rate(ctx, "BAD", "INR")
	assert.ErrorContains(t, err, "failed to parse response")

	_, err = src.Rate(ctx, "EUR", "INR")
	assert.ErrorContains(t, err, "status 500")
}
