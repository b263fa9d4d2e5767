package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dCaesar/cmd/bench"
	"github.com/ValentinKolb/dCaesar/cmd/client"
	"github.com/ValentinKolb/dCaesar/cmd/serve"
	"github.com/ValentinKolb/dCaesar/cmd/util"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dcaesar",
		Short: "caesar cipher over unix sockets",
		Long: fmt.Sprintf(`dCaesar (v%s)

A small request/response service: the client sends a message and a shift
over a unix domain socket, the server answers with the Caesar ciphertext.
Every connection is handled by its own isolated worker.`, Version),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := util.BindCommandFlags(cmd); err != nil {
				return err
			}
			return util.SetupLogging()
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dCaesar",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dCaesar v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServerCmd)
	RootCmd.AddCommand(serve.WorkerCmd)
	RootCmd.AddCommand(client.ClientCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, serializer.Names[0], util.WrapString(fmt.Sprintf("serializer to use (%s), client and server must agree", strings.Join(serializer.Names, ", "))))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
	key = "timeout"
	RootCmd.PersistentFlags().Int64(key, 10, util.WrapString("Timeout in seconds for every read and write on a connection (0 disables it)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
