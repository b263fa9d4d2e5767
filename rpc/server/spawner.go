package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment of a worker process. The names follow the DCAESAR_ prefix of the
// command line configuration, so `dcaesar worker` picks them up like flags.
const (
	EnvSerializer = "DCAESAR_SERIALIZER"
	EnvBufferSize = "DCAESAR_BUFFER_SIZE"
	EnvTimeout    = "DCAESAR_TIMEOUT"
	EnvLogLevel   = "DCAESAR_LOG_LEVEL"
)

// spawnWorker starts a worker process for conn and returns its pid without
// waiting for it. The parent closes its copies of the connection before returning.
//
// The listening socket is close-on-exec, so it never reaches the worker.
func (s *RPCServer) spawnWorker(conn net.Conn) (int, error) {
	defer conn.Close()

	fc, ok := conn.(interface{ File() (*os.File, error) })
	if !ok {
		return 0, fmt.Errorf("connection of type %T cannot be passed to a process", conn)
	}
	f, err := fc.File()
	if err != nil {
		return 0, fmt.Errorf("failed to get connection descriptor: %w", err)
	}
	defer f.Close()

	argv, err := s.workerArgv()
	if err != nil {
		return 0, err
	}

	attr := &os.ProcAttr{
		Env: s.workerEnv(),
		// index 3 of Files becomes descriptor 3 (WorkerConnFD) in the child
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr, f},
	}

	s.spawnMu.Lock()
	defer s.spawnMu.Unlock()

	proc, err := os.StartProcess(argv[0], argv, attr)
	if err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	pid := proc.Pid
	s.workers.Store(pid, workerInfo{Started: time.Now()})
	s.metrics.GetOrCreateCounter(metricSpawned).Inc()

	// the reaper collects the exit status with wait4, Release resets proc.Pid
	_ = proc.Release()

	Logger.Debugf("started worker %d", pid)
	return pid, nil
}

// workerArgv returns the command line of a worker process
func (s *RPCServer) workerArgv() ([]string, error) {
	if len(s.config.WorkerCommand) > 0 {
		return append([]string(nil), s.config.WorkerCommand...), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate own executable: %w", err)
	}
	return []string{exe, "worker"}, nil
}

// workerEnv returns the parent environment with the worker settings and
// ServerConfig.WorkerEnv applied on top
func (s *RPCServer) workerEnv() []string {
	overrides := []string{
		EnvSerializer + "=" + s.serializer.GetName(),
		EnvBufferSize + "=" + strconv.Itoa(s.config.RequestBufferSize),
		EnvTimeout + "=" + strconv.FormatInt(s.config.TimeoutSecond, 10),
		EnvLogLevel + "=" + s.config.LogLevel,
	}
	overrides = append(overrides, s.config.WorkerEnv...)
	return mergeEnv(os.Environ(), overrides)
}

// mergeEnv sets every KEY=value of overrides in base. A later entry replaces
// an earlier one with the same key.
func mergeEnv(base, overrides []string) []string {
	index := make(map[string]int, len(base)+len(overrides))
	env := make([]string, 0, len(base)+len(overrides))

	for _, kv := range append(append([]string(nil), base...), overrides...) {
		key, _, _ := strings.Cut(kv, "=")
		if i, ok := index[key]; ok {
			env[i] = kv
			continue
		}
		index[key] = len(env)
		env = append(env, kv)
	}
	return env
}
