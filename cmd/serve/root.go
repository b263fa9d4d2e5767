package serve

import (
	"context"
	cmdUtil "github.com/ValentinKolb/dCaesar/cmd/util"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/server"
	"github.com/ValentinKolb/dCaesar/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServerCmd      = &cobra.Command{
		Use:     "server <socket_path>",
		Short:   "Start the dCaesar server",
		Long:    `Start the dCaesar server on a unix socket. The server runs until it receives SIGINT or SIGTERM, then it removes the socket. The configuration can be set via command line flags or environment variables. The format of the environment variables is DCAESAR_<flag> (e.g. DCAESAR_BACKLOG=32)`,
		Args:    cmdUtil.ExactArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "backlog"
	ServerCmd.Flags().Int(key, common.DefaultBacklog, cmdUtil.WrapString("Number of pending connections the socket queues before refusing new ones"))

	key = "buffer-size"
	ServerCmd.Flags().Int(key, common.DefaultRequestBufferSize, cmdUtil.WrapString("Size in bytes of the buffer a worker reads the request into. Larger requests are rejected as malformed"))

	key = "isolation"
	ServerCmd.Flags().String(key, string(common.IsolationProcess), cmdUtil.WrapString("How connections are isolated from each other: process (a worker process per connection) or goroutine"))

	key = "metrics-endpoint"
	ServerCmd.Flags().String(key, "", cmdUtil.WrapString("Address to serve prometheus metrics on (e.g. localhost:9090), empty disables it"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, args []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	isolation, err := common.ParseIsolationMode(viper.GetString("isolation"))
	if err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = args[0]
	serveCmdConfig.Backlog = viper.GetInt("backlog")
	serveCmdConfig.RequestBufferSize = viper.GetInt("buffer-size")
	serveCmdConfig.Isolation = isolation
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")

	return nil
}

// run starts the dCaesar server
func run(cmd *cobra.Command, _ []string) error {
	// from here on errors are runtime errors, not usage errors
	cmd.SilenceUsage = true

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		unix.NewUnixServerTransport(),
		s,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serv.Serve(ctx)
}
