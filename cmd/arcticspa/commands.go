package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mjhall/arcticspa/internal/client"
	"github.com/mjhall/arcticspa/internal/config"
	"github.com/mjhall/arcticspa/internal/discovery"
	"github.com/mjhall/arcticspa/internal/protocol"
	"github.com/mjhall/arcticspa/internal/tui"
)

// Scan command and flags
var (
	scanLocalAddr string
	scanPrefixLen int
	scanWait      int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover controllers on the local subnet",
	Long: `Probe every host of the local subnet with a BlueFalls discovery query
and list the controllers that answer.

The scan binds UDP port 33327 on the local address and sends one query per
candidate host to UDP port 9131. Discovered controllers are remembered in the
config file so later commands can default to them.`,
	Example: `  # Scan the /24 around the interface address
  arcticspa scan --local 192.168.1.10

  # Wider subnet, longer wait
  arcticspa scan --local 10.0.4.17 --prefix 22 --wait 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanLocalAddr, "local", "", "Local IPv4 address of the scanning interface")
	scanCmd.Flags().IntVar(&scanPrefixLen, "prefix", 0, "Subnet prefix length (default from config, 24)")
	scanCmd.Flags().IntVar(&scanWait, "wait", 0, "Per-host wait in seconds (default from config, 1)")
}

func runScan(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	prefs := registry.Preferences

	localAddr := scanLocalAddr
	if localAddr == "" {
		localAddr = prefs.LocalAddr
	}
	if localAddr == "" {
		return fmt.Errorf("no local address: pass --local or set local_addr in the config file")
	}

	prefixLen := scanPrefixLen
	if prefixLen == 0 {
		prefixLen = prefs.PrefixLen
	}
	wait := scanWait
	if wait == 0 {
		wait = prefs.ScanWait
	}

	scanner := discovery.NewScanner(localAddr, prefixLen)
	scanner.Wait = time.Duration(wait) * time.Second

	fmt.Printf("Scanning %s/%d...\n", localAddr, prefixLen)

	hosts, err := scanner.Scan(cmd.Context())
	if err != nil {
		return err
	}

	if len(hosts) == 0 {
		fmt.Println("No controllers found.")
		return nil
	}

	for _, host := range hosts {
		spa := registry.GetSpa(host)
		if spa != nil && spa.Nickname != "" {
			fmt.Printf("  %s (%s)\n", host, spa.Nickname)
		} else {
			fmt.Printf("  %s\n", host)
		}
		registry.UpdateSpaLastSeen(host)
	}

	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to record discovered controllers: %w", err)
	}
	return nil
}

// Poll command and flags
var (
	pollTimeout int
	pollTypes   []string
)

var pollCmd = &cobra.Command{
	Use:   "poll [host]",
	Short: "Poll a controller for telemetry",
	Long: `Connect to a controller, request data, and print the most recent frame
of each requested packet type.

Without a host argument the most recently seen controller from the config
file is used. Payload fields are printed by protobuf field number; the
vendor schemas are not public.`,
	Example: `  # Live and Onzen telemetry from a known controller
  arcticspa poll 192.168.1.42

  # Ask for specific packet types with a longer deadline
  arcticspa poll 192.168.1.42 --types live,config,info --timeout 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().IntVar(&pollTimeout, "timeout", 0, "Poll deadline in seconds (default from config, 5)")
	pollCmd.Flags().StringSliceVar(&pollTypes, "types", []string{"live", "onzenlive"}, "Packet types to collect")
}

func runPoll(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	host, err := resolveHost(args, registry)
	if err != nil {
		return err
	}

	kinds := make([]protocol.TypeKey, 0, len(pollTypes))
	for _, name := range pollTypes {
		kind, err := protocol.ParseTypeKey(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	timeout := pollTimeout
	if timeout == 0 {
		timeout = registry.Preferences.PollTimeout
	}

	c := client.New(host)
	frames, err := c.Poll(cmd.Context(), kinds, time.Duration(timeout)*time.Second)
	if err != nil {
		return err
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		frame := frames[kind]
		fmt.Printf("%s (counter %d):\n  %s\n", frame.Kind, frame.Counter, frame.Decoded)
	}

	registry.UpdateSpaLastSeen(host)
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}
	return nil
}

// Watch command
var watchCmd = &cobra.Command{
	Use:   "watch [host]",
	Short: "Stream frames to a live dashboard",
	Long: `Keep a control connection open and show the most recent frame of every
packet kind as it arrives. Press q to quit.`,
	Example: `  arcticspa watch 192.168.1.42`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		host, err := resolveHost(args, registry)
		if err != nil {
			return err
		}
		return tui.Watch(host)
	},
}

// resolveHost picks the controller host: the positional argument if given,
// otherwise the most recently seen controller from the registry.
func resolveHost(args []string, registry *config.Registry) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	var (
		best     string
		bestSeen time.Time
	)
	for host, spa := range registry.Spas {
		if best == "" || spa.LastSeen.After(bestSeen) {
			best = host
			bestSeen = spa.LastSeen
		}
	}
	if best == "" {
		return "", fmt.Errorf("no host given and none remembered; run 'arcticspa scan' first")
	}
	return best, nil
}
