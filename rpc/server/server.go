package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/ValentinKolb/dCaesar/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("server")

// workerInfo is the registry entry of a running worker. In process mode the
// key is the pid, in goroutine mode a task id.
type workerInfo struct {
	Started time.Time
}

// NewRPCServer creates a new cipher server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		unix.NewUnixServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	config = config.WithDefaults()

	Logger.Infof("Created cipher server")
	Logger.Infof(config.String())

	s := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		workers:    xsync.NewMapOf[int, workerInfo](),
		metrics:    metrics.NewSet(),
		ready:      make(chan struct{}),
	}
	s.initMetrics()
	return s
}

// RPCServer accepts connections and hands each one to an isolated worker
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer

	workers *xsync.MapOf[int, workerInfo]
	taskID  atomic.Int64
	// spawnMu is held from process start until the pid is registered, and by the
	// reaper while it collects exit statuses
	spawnMu sync.Mutex

	metrics *metrics.Set
	ready   chan struct{}
}

// Serve binds the endpoint and runs the accept loop until ctx is cancelled.
// It returns nil on cancellation and the error otherwise. Serve must only be
// called once.
func (s *RPCServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.Isolation == common.IsolationProcess {
		// the handler has to be installed before the first worker can exit
		stopReaper := s.startReaper()
		defer stopReaper()
	}

	if err := s.transport.Listen(s.config); err != nil {
		return err
	}
	defer s.transport.Close()
	close(s.ready)

	if s.config.MetricsEndpoint != "" {
		stopMetrics, err := s.serveMetrics(s.config.MetricsEndpoint)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	// closing the listener is the only way to interrupt a blocking accept
	go func() {
		<-ctx.Done()
		_ = s.transport.Close()
	}()

	Logger.Infof("waiting for connections...")

	for {
		conn, err := s.transport.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) && ctx.Err() != nil {
				Logger.Infof("shutting down, %d workers still running", s.ActiveWorkers())
				return nil
			}
			return err
		}
		s.metrics.GetOrCreateCounter(metricAccepted).Inc()

		switch s.config.Isolation {
		case common.IsolationGoroutine:
			s.runTask(conn)
		default:
			if _, err := s.spawnWorker(conn); err != nil {
				// one failed spawn only costs the connection it was meant for
				Logger.Errorf("failed to start worker: %v", err)
				s.metrics.GetOrCreateCounter(metricFailed).Inc()
			}
		}
	}
}

// Ready is closed once the endpoint accepts connections
func (s *RPCServer) Ready() <-chan struct{} {
	return s.ready
}

// ActiveWorkers returns the number of workers that were started and have not finished yet
func (s *RPCServer) ActiveWorkers() int {
	return s.workers.Size()
}

// Addr returns the endpoint the server listens on
func (s *RPCServer) Addr() string {
	return s.transport.Addr()
}

// --------------------------------------------------------------------------
// Goroutine isolation
// --------------------------------------------------------------------------

// runTask services conn on its own goroutine. Neither an error nor a panic
// of the task reaches the accept loop.
func (s *RPCServer) runTask(conn net.Conn) {
	id := int(s.taskID.Add(1))
	s.workers.Store(id, workerInfo{Started: time.Now()})
	s.metrics.GetOrCreateCounter(metricSpawned).Inc()

	go func() {
		defer s.workers.Delete(id)
		defer func() {
			if r := recover(); r != nil {
				_ = conn.Close()
				Logger.Errorf("task %d panicked: %v", id, r)
				s.metrics.GetOrCreateCounter(metricFailed).Inc()
			}
		}()

		err := HandleConnection(conn, s.serializer, s.config, workerLogger)
		if err != nil {
			workerLogger.Warningf("task %d: %v", id, err)
		}
		s.recordResult(fmt.Sprintf("task %d", id), exitCode(err))
	}()
}

// recordResult updates the counters for a finished worker
func (s *RPCServer) recordResult(name string, code int) {
	s.metrics.GetOrCreateCounter(metricReaped).Inc()
	switch code {
	case ExitOK:
		Logger.Debugf("%s finished", name)
	case ExitMalformed:
		s.metrics.GetOrCreateCounter(metricMalformed).Inc()
		s.metrics.GetOrCreateCounter(metricFailed).Inc()
		Logger.Warningf("%s received a malformed request", name)
	default:
		s.metrics.GetOrCreateCounter(metricFailed).Inc()
		Logger.Warningf("%s failed with exit code %d", name, code)
	}
}
