package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"testing"
)

func TestHandleConnection(t *testing.T) {
	ser := serializer.NewJSONSerializer()

	t.Run("answers with the ciphertext", func(t *testing.T) {
		serverConn, clientConn := net.Pipe()
		done := make(chan error, 1)
		go func() { done <- HandleConnection(serverConn, ser, common.ServerConfig{TimeoutSecond: 5}, workerLogger) }()

		payload, err := ser.Serialize(*common.NewCipherRequest("Hello World", "3"))
		require.NoError(t, err)
		_, err = clientConn.Write(payload)
		require.NoError(t, err)

		resp, err := io.ReadAll(clientConn)
		require.NoError(t, err)
		require.Equal(t, "Khoor Zruog", string(resp))
		require.NoError(t, <-done)
	})

	t.Run("closes without answer on malformed request", func(t *testing.T) {
		serverConn, clientConn := net.Pipe()
		done := make(chan error, 1)
		go func() { done <- HandleConnection(serverConn, ser, common.ServerConfig{}, workerLogger) }()

		_, err := clientConn.Write([]byte(`{"message":"abc"}`))
		require.NoError(t, err)

		resp, err := io.ReadAll(clientConn)
		require.NoError(t, err)
		require.Empty(t, resp)

		err = <-done
		require.True(t, errors.Is(err, common.ErrMalformedMessage))
		require.Equal(t, ExitMalformed, exitCode(err))
	})

	t.Run("invalid shift is malformed", func(t *testing.T) {
		serverConn, clientConn := net.Pipe()
		done := make(chan error, 1)
		go func() { done <- HandleConnection(serverConn, ser, common.ServerConfig{}, workerLogger) }()

		_, err := clientConn.Write([]byte(`{"message":"abc","shift_val":"1.5"}`))
		require.NoError(t, err)
		_, _ = io.ReadAll(clientConn)

		err = <-done
		require.True(t, errors.Is(err, common.ErrMalformedMessage))
		require.True(t, errors.Is(err, common.ErrShiftParse))
	})

	t.Run("client hangs up before sending", func(t *testing.T) {
		serverConn, clientConn := net.Pipe()
		done := make(chan error, 1)
		go func() { done <- HandleConnection(serverConn, ser, common.ServerConfig{}, workerLogger) }()

		require.NoError(t, clientConn.Close())

		err := <-done
		require.True(t, errors.Is(err, common.ErrTransfer))
		require.Equal(t, ExitFailure, exitCode(err))
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{nil, ExitOK},
		{fmt.Errorf("%w: bad", common.ErrMalformedMessage), ExitMalformed},
		{fmt.Errorf("%w: reset", common.ErrTransfer), ExitFailure},
		{errors.New("other"), ExitFailure},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, exitCode(tt.err), "%v", tt.err)
	}
}

func TestServeInheritedConnBadDescriptor(t *testing.T) {
	// a descriptor that is certainly not open in the test process
	require.Equal(t, ExitFailure, ServeInheritedConn(1<<20, serializer.NewJSONSerializer(), common.ServerConfig{}))
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "DCAESAR_SERIALIZER=yaml", "HOME=/root"}
	env := mergeEnv(base, []string{"DCAESAR_SERIALIZER=json", "DCAESAR_TIMEOUT=5"})

	require.Equal(t, []string{"PATH=/bin", "DCAESAR_SERIALIZER=json", "HOME=/root", "DCAESAR_TIMEOUT=5"}, env)
	require.Equal(t, "DCAESAR_SERIALIZER=yaml", base[1])
}
