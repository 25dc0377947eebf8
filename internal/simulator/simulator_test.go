package simulator

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mjhall/arcticspa/internal/client"
	"github.com/mjhall/arcticspa/internal/discovery"
	"github.com/mjhall/arcticspa/internal/protocol"
)

// startSimulator runs a simulator on ephemeral ports and arranges shutdown.
func startSimulator(t *testing.T, config Config) *Simulator {
	t.Helper()

	sim := New(config)
	if err := sim.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sim.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return sim
}

func TestSimulatorServesPoll(t *testing.T) {
	sim := startSimulator(t, Config{Interval: 100 * time.Millisecond})

	c := client.New("127.0.0.1")
	c.Port = sim.Addr().(*net.TCPAddr).Port

	kinds := []protocol.TypeKey{protocol.TypeLive, protocol.TypeOnzenLive}
	frames, err := c.Poll(context.Background(), kinds, 5*time.Second)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("got %d kinds, want 2", len(frames))
	}
	for _, kind := range kinds {
		frame := frames[kind]
		if frame == nil {
			t.Fatalf("no %v frame", kind)
		}
		if frame.Decoded == nil || frame.Decoded.String() == "{}" {
			t.Errorf("%v payload decoded empty: %v", kind, frame.Decoded)
		}
	}
}

func TestSimulatorServesConcurrentClients(t *testing.T) {
	sim := startSimulator(t, Config{Interval: 100 * time.Millisecond})
	port := sim.Addr().(*net.TCPAddr).Port

	kinds := []protocol.TypeKey{protocol.TypeLive, protocol.TypeOnzenLive}

	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			c := client.New("127.0.0.1")
			c.Port = port
			_, err := c.Poll(context.Background(), kinds, 5*time.Second)
			errs <- err
		}()
	}
	for i := 0; i < 3; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent poll: %v", err)
		}
	}
}

func TestSimulatorAnswersDiscovery(t *testing.T) {
	// Bind the response socket first so its port can be configured.
	responseConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to bind response socket: %v", err)
	}
	defer responseConn.Close()
	responsePort := responseConn.LocalAddr().(*net.UDPAddr).Port

	queryConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to probe for a free port: %v", err)
	}
	queryPort := queryConn.LocalAddr().(*net.UDPAddr).Port
	queryConn.Close()

	startSimulator(t, Config{
		QueryPort:    queryPort,
		ResponsePort: responsePort,
		Serial:       "100123",
	})

	simAddr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: queryPort}

	// A malformed query first; it must be ignored.
	if _, err := responseConn.WriteToUDP([]byte("Hello,BlueFalls,"), simAddr); err != nil {
		t.Fatalf("failed to send query: %v", err)
	}
	if _, err := responseConn.WriteToUDP([]byte(discovery.QueryPrefix), simAddr); err != nil {
		t.Fatalf("failed to send query: %v", err)
	}

	responseConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	n, addr, err := responseConn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no discovery response: %v", err)
	}

	want := discovery.ResponsePrefix + "100123"
	if string(buf[:n]) != want {
		t.Errorf("response = %q, want %q", buf[:n], want)
	}
	if !addr.IP.IsLoopback() {
		t.Errorf("response came from %v", addr)
	}
}

func TestSimulatorScanIntegration(t *testing.T) {
	queryConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to probe for a free port: %v", err)
	}
	queryPort := queryConn.LocalAddr().(*net.UDPAddr).Port
	queryConn.Close()

	responseConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to probe for a free port: %v", err)
	}
	responsePort := responseConn.LocalAddr().(*net.UDPAddr).Port
	responseConn.Close()

	startSimulator(t, Config{
		QueryPort:    queryPort,
		ResponsePort: responsePort,
		Serial:       "100123",
	})

	scanner := discovery.NewScanner("127.0.0.1", 30)
	scanner.QueryPort = queryPort
	scanner.ResponsePort = responsePort
	scanner.Wait = 500 * time.Millisecond

	hosts, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(hosts) != 1 || hosts[0] != "127.0.0.1" {
		t.Errorf("Scan() = %v, want [127.0.0.1]", hosts)
	}
}

func TestShutdownClosesConnections(t *testing.T) {
	sim := New(Config{Interval: 50 * time.Millisecond})
	if err := sim.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	conn, err := net.Dial("tcp", sim.Addr().String())
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	// Drain the burst so the handler is known to be up.
	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(buf); err != nil {
		t.Fatalf("no telemetry burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sim.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// The handler side is gone; reads drain any buffered bytes then EOF.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, err := conn.Read(buf); err != nil {
			break
		}
	}
}
