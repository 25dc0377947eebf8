// Arcticspa-sim is a fake Arctic Spa controller for bench testing.
//
// It serves the frame protocol on a TCP port and answers BlueFalls discovery
// queries over UDP, so the arcticspa client tools can be exercised without
// hardware. Telemetry payloads are protobuf-encoded sample values.
//
// Usage:
//
//	arcticspa-sim [flags]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mjhall/arcticspa/internal/client"
	"github.com/mjhall/arcticspa/internal/discovery"
	"github.com/mjhall/arcticspa/internal/logging"
	"github.com/mjhall/arcticspa/internal/simulator"
	"github.com/mjhall/arcticspa/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	host     string
	port     int
	serial   string
	interval time.Duration
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "arcticspa-sim",
	Short: "Simulated Arctic Spa controller",
	Long: `Run a fake controller that speaks the Arctic Spa frame protocol.

The simulator emits heartbeat, live, and Onzen frames on every control
connection and answers discovery queries on UDP port 9131. Point the
arcticspa client at it for protocol work without a hot tub on the bench.`,
	Example: `  # Serve on the protocol's real ports
  arcticspa-sim --host 192.168.1.10

  # Local bench setup on unprivileged ports
  arcticspa-sim --port 5534 --log-level debug`,
	Version: version.Version,
	RunE:    runSim,
}

func init() {
	rootCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Bind address")
	rootCmd.Flags().IntVar(&port, "port", client.DefaultPort, "TCP control port")
	rootCmd.Flags().StringVar(&serial, "serial", "100123", "Serial reported in discovery responses")
	rootCmd.Flags().DurationVar(&interval, "interval", time.Second, "Telemetry emit interval")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runSim(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	sim := simulator.New(simulator.Config{
		Host:         host,
		Port:         port,
		QueryPort:    discovery.QueryPort,
		ResponsePort: discovery.ResponsePort,
		Serial:       serial,
		Interval:     interval,
	})

	if err := sim.Start(); err != nil {
		return err
	}
	fmt.Printf("Simulated controller on %s (serial %s)\n", sim.Addr(), serial)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sim.Shutdown(ctx)
}
