package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// IsolationMode selects how an accepted connection is serviced
type IsolationMode string

const (
	// IsolationProcess runs every connection in its own worker process
	IsolationProcess IsolationMode = "process"
	// IsolationGoroutine runs every connection in its own goroutine with a recover boundary
	IsolationGoroutine IsolationMode = "goroutine"
)

const (
	// DefaultBacklog is the pending connection queue depth of the listening socket
	DefaultBacklog = 10
	// DefaultRequestBufferSize is the size of the single read a worker does for the request
	DefaultRequestBufferSize = 1024
)

// ParseIsolationMode converts a flag value to an IsolationMode
func ParseIsolationMode(s string) (IsolationMode, error) {
	switch IsolationMode(strings.ToLower(strings.TrimSpace(s))) {
	case IsolationProcess:
		return IsolationProcess, nil
	case IsolationGoroutine:
		return IsolationGoroutine, nil
	default:
		return "", fmt.Errorf("invalid isolation mode %q (expected process or goroutine)", s)
	}
}

// ServerConfig holds all configuration parameters of the cipher server
type ServerConfig struct {
	// Endpoint is the filesystem path of the unix socket
	Endpoint string
	// Backlog is the listen queue depth
	Backlog int
	// RequestBufferSize bounds the size of a request record
	RequestBufferSize int

	// Isolation selects process or goroutine workers
	Isolation IsolationMode
	// WorkerCommand is the program and leading arguments used to start a worker
	// process. The connection is passed as fd 3. Empty means "<this binary> worker".
	WorkerCommand []string
	// WorkerEnv is appended to the environment of every worker process
	WorkerEnv []string

	// TimeoutSecond bounds every read and write of a worker, 0 disables deadlines
	TimeoutSecond int64

	// Logging configuration
	LogLevel string

	// MetricsEndpoint is the address of the prometheus endpoint, empty disables it
	MetricsEndpoint string
}

// WithDefaults returns a copy with zero values replaced by their defaults
func (c ServerConfig) WithDefaults() ServerConfig {
	if c.Backlog <= 0 {
		c.Backlog = DefaultBacklog
	}
	if c.RequestBufferSize <= 0 {
		c.RequestBufferSize = DefaultRequestBufferSize
	}
	if c.Isolation == "" {
		c.Isolation = IsolationProcess
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("Cipher Server")
	addField("Endpoint", c.Endpoint)
	addField("Backlog", strconv.Itoa(c.Backlog))
	addField("Request Buffer", fmt.Sprintf("%d bytes", c.RequestBufferSize))
	addField("Timeout", formatTimeout(c.TimeoutSecond))

	// Workers
	addSection("Workers")
	addField("Isolation", string(c.Isolation))
	if c.Isolation == IsolationProcess && len(c.WorkerCommand) > 0 {
		addField("Worker Command", strings.Join(c.WorkerCommand, " "))
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoint      string
	TimeoutSecond int64
	LogLevel      string
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", formatTimeout(c.TimeoutSecond))
	addField("Log Level", c.LogLevel)

	return sb.String()
}

func formatTimeout(sec int64) string {
	if sec <= 0 {
		return "none"
	}
	return fmt.Sprintf("%d sec", sec)
}
