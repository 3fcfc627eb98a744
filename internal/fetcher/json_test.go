package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func drain[T any](t *testing.T, items <-chan T, errs <-chan error) ([]T, error) {
	t.Helper()
	var out []T
	for it := range items {
		out = append(out, it)
	}
	return out, <-errs
}

func TestDecodeJSONArray(t *testing.T) {
	items, errs := DecodeJSONArray[item](context.Background(),
		strings.NewReader(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`))
	got, err := drain(t, items, errs)
	require.NoError(t, err)
	assert.Equal(t, []item{{1, "a"}, {2, "b"}}, got)
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	items, errs := DecodeJSONArray[item](context.Background(), strings.NewReader(`[]`))
	got, err := drain(t, items, errs)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeJSONArray_Null(t *testing.T) {
	items, errs := DecodeJSONArray[item](context.Background(), strings.NewReader(`null`))
	got, err := drain(t, items, errs)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeJSONArray_NotArray(t *testing.T) {
	items, errs := DecodeJSONArray[item](context.Background(), strings.NewReader(`{"detail":"x"}`))
	_, err := drain(t, items, errs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected array")
}

func TestDecodeJSONArray_BadElement(t *testing.T) {
	items, errs := DecodeJSONArray[item](context.Background(),
		strings.NewReader(`[{"id":1},{"id":"two"}]`))
	got, err := drain(t, items, errs)
	require.Error(t, err)
	assert.Len(t, got, 1)
}

func TestDecodeJSONArray_EmptyPayload(t *testing.T) {
	items, errs := DecodeJSONArray[item](context.Background(), io.LimitReader(strings.NewReader(""), 0))
	_, err := drain(t, items, errs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty payload")
}

func TestGetArray(t *testing.T) {
	srv := serveBody(t, `[{"id":7,"name":"x"}]`)
	got, err := GetArray[item](context.Background(), New(testOptions()), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []item{{7, "x"}}, got)
}

func TestGetArray_NullIsEmpty(t *testing.T) {
	srv := serveBody(t, `null`)
	got, err := GetArray[item](context.Background(), New(testOptions()), srv.URL)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetArray_DecodeError(t *testing.T) {
	srv := serveBody(t, `[{"id":"nope"}]`)
	_, err := GetArray[item](context.Background(), New(testOptions()), srv.URL)
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	assert.False(t, IsNetworkError(err))
}

func TestGetJSON(t *testing.T) {
	srv := serveBody(t, `{"id":3,"name":"z"}`)
	got, err := GetJSON[item](context.Background(), New(testOptions()), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, item{3, "z"}, *got)
}

func TestGetJSON_DecodeError(t *testing.T) {
	srv := serveBody(t, `<html>`)
	_, err := GetJSON[item](context.Background(), New(testOptions()), srv.URL)
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
}

func TestGetJSON_PropagatesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := GetJSON[item](context.Background(), New(testOptions()), srv.URL)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
