package server

import (
	"bytes"
	"context"
	"errors"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/ValentinKolb/dCaesar/rpc/transport/unix"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"
)

// envTestWorker turns the test binary into a worker process, see TestMain
const envTestWorker = "DCAESAR_TEST_WORKER"

func TestMain(m *testing.M) {
	if os.Getenv(envTestWorker) == "1" {
		os.Exit(runTestWorker())
	}
	os.Exit(m.Run())
}

// runTestWorker does what `dcaesar worker` does, reading its settings from the environment
func runTestWorker() int {
	ser, err := serializer.NewSerializer(os.Getenv(EnvSerializer))
	if err != nil {
		return ExitFailure
	}
	bufferSize, _ := strconv.Atoi(os.Getenv(EnvBufferSize))
	timeout, _ := strconv.ParseInt(os.Getenv(EnvTimeout), 10, 64)

	return ServeInheritedConn(WorkerConnFD, ser, common.ServerConfig{
		RequestBufferSize: bufferSize,
		TimeoutSecond:     timeout,
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func counter(s *RPCServer, name string) uint64 {
	return s.metrics.GetOrCreateCounter(name).Get()
}

// startServer runs a server on a fresh socket until the test ends
func startServer(t *testing.T, isolation common.IsolationMode, ser serializer.IRPCSerializer) *RPCServer {
	t.Helper()

	config := common.ServerConfig{
		Endpoint:      filepath.Join(t.TempDir(), "dcaesar.sock"),
		Isolation:     isolation,
		TimeoutSecond: 5,
		LogLevel:      "info",
	}
	if isolation == common.IsolationProcess {
		exe, err := os.Executable()
		require.NoError(t, err)
		config.WorkerCommand = []string{exe, "-test.run=^$"}
		config.WorkerEnv = []string{envTestWorker + "=1"}
	}

	s := NewRPCServer(config, unix.NewUnixServerTransport(), ser)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(ctx) }()

	select {
	case <-s.Ready():
	case err := <-serveErr:
		cancel()
		t.Fatalf("server stopped before listening: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not start listening")
	}

	t.Cleanup(func() {
		// let all workers finish, so no exit status is left for the next test
		require.Eventually(t, func() bool { return s.ActiveWorkers() == 0 }, 10*time.Second, 10*time.Millisecond)
		cancel()
		require.NoError(t, <-serveErr)
	})
	return s
}

// send writes raw request bytes and returns everything the server answers
func send(t *testing.T, endpoint string, payload []byte, expected int) ([]byte, error) {
	t.Helper()

	client := unix.NewUnixClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoint: endpoint, TimeoutSecond: 5}))
	defer client.Close()

	_, err := client.Send(payload)
	require.NoError(t, err)

	buf := make([]byte, expected)
	n, err := client.ReceiveFull(buf)
	return buf[:n], err
}

// exchange sends a well formed request and returns the ciphertext
func exchange(t *testing.T, s *RPCServer, ser serializer.IRPCSerializer, message, shift string) string {
	t.Helper()

	req := common.NewCipherRequest(message, shift)
	payload, err := ser.Serialize(*req)
	require.NoError(t, err)

	resp, err := send(t, s.Addr(), payload, common.ExpectedResponseSize(req))
	require.NoError(t, err)
	return string(resp)
}

var isolationModes = []common.IsolationMode{common.IsolationProcess, common.IsolationGoroutine}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestServeEncrypts(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		shift    string
		expected string
	}{
		{"Hello World", "Hello World", "3", "Khoor Zruog"},
		{"Full rotation", "Hello World", "26", "Hello World"},
		{"Negative shift", "abc", "-3", "xyz"},
		{"Large shift", "abc", "123456789012345678901234567891", "bcd"},
		{"Punctuation", "a.b, c!", "1", "b.c, d!"},
	}

	for _, mode := range isolationModes {
		for _, name := range serializer.Names {
			t.Run(string(mode)+"/"+name, func(t *testing.T) {
				ser, err := serializer.NewSerializer(name)
				require.NoError(t, err)
				s := startServer(t, mode, ser)

				for _, tt := range tests {
					require.Equal(t, tt.expected, exchange(t, s, ser, tt.message, tt.shift), tt.name)
				}
			})
		}
	}
}

func TestServeEmptyMessage(t *testing.T) {
	for _, mode := range isolationModes {
		t.Run(string(mode), func(t *testing.T) {
			ser := serializer.NewJSONSerializer()
			s := startServer(t, mode, ser)

			require.Equal(t, "", exchange(t, s, ser, "", "5"))
		})
	}
}

func TestMalformedRequestDoesNotAffectServer(t *testing.T) {
	for _, mode := range isolationModes {
		t.Run(string(mode), func(t *testing.T) {
			ser := serializer.NewJSONSerializer()
			s := startServer(t, mode, ser)

			// the worker closes without answering
			resp, err := send(t, s.Addr(), []byte("not a request"), 8)
			require.Empty(t, resp)
			require.True(t, errors.Is(err, common.ErrTransfer))

			resp, err = send(t, s.Addr(), []byte(`{"message":"abc","shift_val":"three"}`), 3)
			require.Empty(t, resp)
			require.True(t, errors.Is(err, common.ErrTransfer))

			// the next client is served normally
			require.Equal(t, "Khoor Zruog", exchange(t, s, ser, "Hello World", "3"))

			require.Eventually(t, func() bool {
				return counter(s, metricMalformed) == 2 && counter(s, metricReaped) == 3 && counter(s, metricFailed) == 2
			}, 10*time.Second, 10*time.Millisecond)
		})
	}
}

func TestWorkersAreReaped(t *testing.T) {
	ser := serializer.NewJSONSerializer()
	s := startServer(t, common.IsolationProcess, ser)

	const rounds = 10
	for i := 0; i < rounds; i++ {
		require.Equal(t, "bcd", exchange(t, s, ser, "abc", "1"))
	}

	// the registry entry goes away before the result is counted
	require.Eventually(t, func() bool {
		return s.ActiveWorkers() == 0 && counter(s, metricReaped) == rounds
	}, 10*time.Second, 10*time.Millisecond)
	require.Equal(t, uint64(rounds), counter(s, metricAccepted))
	require.Equal(t, uint64(rounds), counter(s, metricSpawned))
	require.Equal(t, uint64(rounds), counter(s, metricReaped))
	require.Equal(t, uint64(0), counter(s, metricFailed))
}

// connPair returns both ends of a connected unix stream socket pair
func connPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	require.NoError(t, err)

	conns := make([]net.Conn, 2)
	for i, fd := range fds {
		f := os.NewFile(uintptr(fd), "pair")
		conns[i], err = net.FileConn(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)
	}
	return conns[0], conns[1]
}

func TestSpawnWorkerReturnsPid(t *testing.T) {
	ser := serializer.NewJSONSerializer()
	s := startServer(t, common.IsolationProcess, ser)

	workerEnd, clientEnd := connPair(t)
	defer clientEnd.Close()

	pid, err := s.spawnWorker(workerEnd)
	require.NoError(t, err)
	require.Greater(t, pid, 0)
	require.Equal(t, uint64(1), counter(s, metricSpawned))

	// the worker serves the connection it was handed
	payload, err := ser.Serialize(*common.NewCipherRequest("abc", "1"))
	require.NoError(t, err)
	_, err = clientEnd.Write(payload)
	require.NoError(t, err)
	require.NoError(t, clientEnd.SetReadDeadline(time.Now().Add(5*time.Second)))

	resp, err := io.ReadAll(clientEnd)
	require.NoError(t, err)
	require.Equal(t, "bcd", string(resp))

	require.Eventually(t, func() bool { return counter(s, metricReaped) == 1 }, 10*time.Second, 10*time.Millisecond)
}

func TestConcurrentClients(t *testing.T) {
	for _, mode := range isolationModes {
		t.Run(string(mode), func(t *testing.T) {
			ser := serializer.NewJSONSerializer()
			s := startServer(t, mode, ser)

			const clients = 8
			errs := make(chan error, clients)
			for i := 0; i < clients; i++ {
				go func(i int) {
					client := unix.NewUnixClientTransport()
					if err := client.Connect(common.ClientConfig{Endpoint: s.Addr(), TimeoutSecond: 5}); err != nil {
						errs <- err
						return
					}
					defer client.Close()

					message := "client " + strconv.Itoa(i)
					payload, _ := ser.Serialize(*common.NewCipherRequest(message, "13"))
					if _, err := client.Send(payload); err != nil {
						errs <- err
						return
					}
					buf := make([]byte, len(message))
					if _, err := client.ReceiveFull(buf); err != nil {
						errs <- err
						return
					}
					if string(buf) != "pyvrag "+strconv.Itoa(i) {
						errs <- errors.New("unexpected ciphertext " + string(buf))
						return
					}
					errs <- nil
				}(i)
			}

			for i := 0; i < clients; i++ {
				require.NoError(t, <-errs)
			}
		})
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	config := common.ServerConfig{
		Endpoint:  filepath.Join(t.TempDir(), "dcaesar.sock"),
		Isolation: common.IsolationGoroutine,
	}
	s := NewRPCServer(config, unix.NewUnixServerTransport(), serializer.NewJSONSerializer())

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(ctx) }()
	<-s.Ready()

	cancel()
	select {
	case err := <-serveErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_, err := os.Stat(config.Endpoint)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestServeEndpointError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular-file")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s := NewRPCServer(common.ServerConfig{Endpoint: path, Isolation: common.IsolationGoroutine},
		unix.NewUnixServerTransport(), serializer.NewJSONSerializer())

	err := s.Serve(context.Background())
	require.True(t, errors.Is(err, common.ErrEndpoint))
}

func TestWriteMetrics(t *testing.T) {
	ser := serializer.NewJSONSerializer()
	s := startServer(t, common.IsolationGoroutine, ser)
	exchange(t, s, ser, "abc", "1")

	var buf bytes.Buffer
	s.WriteMetrics(&buf, false)

	out := buf.String()
	require.Contains(t, out, metricAccepted+" 1")
	require.Contains(t, out, metricSpawned+" 1")
	require.Contains(t, out, metricMalformed+" 0")
	require.Contains(t, out, metricActive)
}
