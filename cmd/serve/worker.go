package serve

import (
	cmdUtil "github.com/ValentinKolb/dCaesar/cmd/util"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

// WorkerCmd is started by the server once per connection (process isolation).
// The connection is inherited as descriptor 3, the settings come from the
// DCAESAR_* environment the server prepares.
var WorkerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Serve a single connection inherited from the server",
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		s, err := cmdUtil.GetSerializer()
		if err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(server.ExitFailure)
		}

		config := common.ServerConfig{
			RequestBufferSize: viper.GetInt("buffer-size"),
			TimeoutSecond:     viper.GetInt64("timeout"),
			LogLevel:          viper.GetString("log-level"),
		}

		os.Exit(server.ServeInheritedConn(server.WorkerConnFD, s, config))
	},
}
