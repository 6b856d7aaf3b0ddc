package singleton

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_AddrAvailable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	got, err := Acquire(addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	defer got.Close()
	assert.Equal(t, addr, got.Addr().String())
}

func TestAcquire_HealthyInstance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	got, err := Acquire(addr)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, got)
}

func TestAcquire_UnhealthyInstance(t *testing.T) {
	// 占用端口但不响应 HTTP
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	got, err := Acquire(l.Addr().String())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "health check failed")
}

func TestIsAddrInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, err = net.Listen("tcp", l.Addr().String())
	require.Error(t, err)
	assert.True(t, isAddrInUse(err))

	assert.False(t, isAddrInUse(net.UnknownNetworkError("bogus")))
}

func TestProbeURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8000/health", probeURL(":8000"))
	assert.Equal(t, "http://127.0.0.1:8000/health", probeURL("0.0.0.0:8000"))
	assert.Equal(t, "http://10.0.0.5:9000/health", probeURL("10.0.0.5:9000"))
}
