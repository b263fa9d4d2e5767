package client

import (
	"fmt"
	"github.com/ValentinKolb/dCaesar/cmd/util"
	rpcClient "github.com/ValentinKolb/dCaesar/rpc/client"
	"github.com/ValentinKolb/dCaesar/rpc/transport/unix"
	"github.com/spf13/cobra"
)

// ClientCmd runs one exchange with a server and prints the result
var ClientCmd = &cobra.Command{
	Use:   "client <socket_path> <message> <shift_value>",
	Short: "Encrypt a message on the server and decrypt the answer locally",
	Long: `Send a message and a shift value to the dCaesar server listening on socket_path.
The server answers with the ciphertext, which is decrypted locally with the
inverse shift. The shift is a base-10 integer and may be negative or larger than 26.
Flags must come before socket_path, everything after it is taken as is.`,
	Args: util.ExactArgs(3),
	RunE: run,
}

func init() {
	// flags end at the first argument, so a shift like -3 or a message
	// starting with a dash stays positional
	ClientCmd.Flags().SetInterspersed(false)
}

func run(cmd *cobra.Command, args []string) error {
	// from here on errors are runtime errors, not usage errors
	cmd.SilenceUsage = true

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	c := rpcClient.NewRPCCipherClient(
		util.GetClientConfig(args[0]),
		unix.NewUnixClientTransport(),
		s,
	)

	res, err := c.Exchange(args[1], args[2])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sent %d bytes\n", res.BytesSent)
	fmt.Fprintf(out, "Received %d bytes\n", res.BytesReceived)
	fmt.Fprintf(out, "Encrypted Message: %s\n", res.Ciphertext)
	fmt.Fprintf(out, "Decrypted Message: %s\n", res.Plaintext)
	return nil
}
