package bench

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/dCaesar/cmd/util"
	"github.com/ValentinKolb/dCaesar/lib/cipher"
	"github.com/ValentinKolb/dCaesar/rpc/client"
	"github.com/ValentinKolb/dCaesar/rpc/common"
	"github.com/ValentinKolb/dCaesar/rpc/serializer"
	"github.com/ValentinKolb/dCaesar/rpc/transport/unix"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	BenchCmd = &cobra.Command{
		Use:     "bench <socket_path>",
		Short:   "Performance testing tool for dCaesar servers",
		Long:    "Run many exchanges against a running server, each on its own connection, verify every round trip and report the latency distribution.",
		Args:    util.ExactArgs(1),
		PreRunE: processBenchConfig,
		RunE:    run,
	}
	benchConfig = Config{}
)

// Config describes one benchmark run
type Config struct {
	Client      common.ClientConfig
	Connections int
	Threads     int
	Message     string
	Shift       string
}

// Result is the outcome of a benchmark run
type Result struct {
	Duration time.Duration
	Failed   int64
	// Latency holds the duration of every successful exchange
	Latency gometrics.Timer
}

func init() {
	// add flags
	key := "connections"
	BenchCmd.Flags().Int(key, 1000, util.WrapString("Total number of exchanges (every exchange uses a new connection)"))
	key = "threads"
	BenchCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent clients"))
	key = "message"
	BenchCmd.Flags().String(key, "Hello World", util.WrapString("Message to send with every exchange"))
	key = "shift"
	BenchCmd.Flags().String(key, "3", util.WrapString("Shift value to send with every exchange"))
	key = "csv"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processBenchConfig(cmd *cobra.Command, args []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	benchConfig = Config{
		Client:      util.GetClientConfig(args[0]),
		Connections: viper.GetInt("connections"),
		Threads:     viper.GetInt("threads"),
		Message:     viper.GetString("message"),
		Shift:       viper.GetString("shift"),
	}

	if benchConfig.Connections < 1 || benchConfig.Threads < 1 {
		return fmt.Errorf("connections and threads must be at least 1")
	}
	if _, err := cipher.ParseShift(benchConfig.Shift); err != nil {
		return err
	}
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Performance testing tool for dCaesar servers")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, benchConfig.Client.String())
	fmt.Fprintf(out, "Serializer: %s\nConnections: %d\nThreads: %d\n\n", s.GetName(), benchConfig.Connections, benchConfig.Threads)
	fmt.Fprintln(out, "starting tests...")

	result := Run(benchConfig, s)
	printResult(out, result)

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, benchConfig, s.GetName(), result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Results saved to %s\n", csvPath)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d exchanges failed", result.Failed, benchConfig.Connections)
	}
	return nil
}

// Run performs config.Connections exchanges spread over config.Threads clients.
// An exchange fails when it errors or the ciphertext or the decrypted text is wrong.
func Run(config Config, s serializer.IRPCSerializer) Result {
	shift, _ := cipher.ParseShift(config.Shift)
	expected := cipher.Encrypt([]byte(config.Message), shift)

	registry := gometrics.NewRegistry()
	latency := gometrics.GetOrRegisterTimer("exchange", registry)
	failed := gometrics.GetOrRegisterCounter("failed", registry)

	jobs := make(chan struct{})
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < config.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// one client per goroutine, clients are not safe for concurrent use
			c := client.NewRPCCipherClient(config.Client, unix.NewUnixClientTransport(), s)
			for range jobs {
				begin := time.Now()
				res, err := c.Exchange(config.Message, config.Shift)
				if err != nil {
					client.Logger.Warningf("exchange failed: %v", err)
					failed.Inc(1)
					continue
				}
				if !bytes.Equal(res.Ciphertext, expected) || string(res.Plaintext) != config.Message {
					client.Logger.Warningf("wrong round trip: got %q / %q", res.Ciphertext, res.Plaintext)
					failed.Inc(1)
					continue
				}
				latency.UpdateSince(begin)
			}
		}()
	}

	for i := 0; i < config.Connections; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	return Result{
		Duration: time.Since(start),
		Failed:   failed.Count(),
		Latency:  latency.Snapshot(),
	}
}

func printResult(out io.Writer, r Result) {
	ok := r.Latency.Count()
	ps := r.Latency.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Fprintf(out, "%-20s%d ok, %d failed in %s\n", "exchanges", ok, r.Failed, r.Duration.Round(time.Millisecond))
	if ok == 0 {
		return
	}
	fmt.Fprintf(out, "%-20s%.0f ops/sec\n", "throughput", float64(ok)/r.Duration.Seconds())
	fmt.Fprintf(out, "%-20s%s\n", "mean", time.Duration(r.Latency.Mean()))
	fmt.Fprintf(out, "%-20s%s\n", "p50", time.Duration(ps[0]))
	fmt.Fprintf(out, "%-20s%s\n", "p95", time.Duration(ps[1]))
	fmt.Fprintf(out, "%-20s%s\n", "p99", time.Duration(ps[2]))
	fmt.Fprintf(out, "%-20s%s\n", "max", time.Duration(r.Latency.Max()))
}

// writeResultsToCSV writes the benchmark result to a CSV file
func writeResultsToCSV(csvPath string, config Config, serializerName string, r Result) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	ps := r.Latency.Percentiles([]float64{0.5, 0.95, 0.99})
	rows := [][]string{
		{"Endpoint", "Serializer", "Connections", "Threads", "Ok", "Failed", "DurationNs", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "MaxNs"},
		{
			config.Client.Endpoint,
			serializerName,
			strconv.Itoa(config.Connections),
			strconv.Itoa(config.Threads),
			strconv.FormatInt(r.Latency.Count(), 10),
			strconv.FormatInt(r.Failed, 10),
			strconv.FormatInt(r.Duration.Nanoseconds(), 10),
			fmt.Sprintf("%.0f", r.Latency.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatInt(r.Latency.Max(), 10),
		},
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %v", err)
	}
	return nil
}
