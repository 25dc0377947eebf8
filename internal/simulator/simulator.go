package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mjhall/arcticspa/internal/discovery"
	"github.com/mjhall/arcticspa/internal/logging"
	"github.com/mjhall/arcticspa/internal/protocol"
)

// Config holds the simulator configuration.
type Config struct {
	Host string // bind address, defaults to 127.0.0.1
	Port int    // TCP control port; 0 picks an ephemeral port

	// QueryPort is the UDP port answered with discovery responses;
	// ResponsePort is where responses are sent on the prober. Zero
	// disables the discovery responder.
	QueryPort    int
	ResponsePort int

	Serial   string        // appended to discovery responses
	Interval time.Duration // telemetry emit interval, defaults to 1s
}

// Simulator is a fake controller for bench testing: a TCP listener that
// speaks the frame protocol and an optional UDP discovery responder.
//
// Every control connection receives a burst of heartbeat, live, and Onzen
// frames immediately, again whenever the peer sends anything, and on every
// interval tick. Payloads are protobuf-encoded sample values.
type Simulator struct {
	config      Config
	listener    net.Listener
	udpConn     *net.UDPConn
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]net.Conn
}

// New creates a Simulator instance.
func New(config Config) *Simulator {
	if config.Host == "" {
		config.Host = "127.0.0.1"
	}
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	if config.Serial == "" {
		config.Serial = "000000"
	}
	return &Simulator{
		config:      config,
		activeConns: make(map[string]net.Conn),
	}
}

// Start binds the listeners and begins serving. It does not block.
func (s *Simulator) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	if s.config.QueryPort != 0 {
		udpConn, err := net.ListenUDP("udp4", &net.UDPAddr{
			IP:   net.ParseIP(s.config.Host),
			Port: s.config.QueryPort,
		})
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to bind discovery responder: %w", err)
		}
		s.udpConn = udpConn

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.answerQueries()
		}()
	}

	logging.Info("Simulated controller listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("serial", s.config.Serial),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptConnections()
	}()

	return nil
}

// Addr returns the bound TCP address, valid after Start.
func (s *Simulator) Addr() net.Addr {
	return s.listener.Addr()
}

// acceptConnections accepts and handles control connections.
func (s *Simulator) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Listener closed during shutdown.
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection emits telemetry to a single control connection until the
// peer disconnects or the simulator shuts down.
func (s *Simulator) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.Debug("Control connection closed",
			zap.String("remote_addr", remoteAddr),
		)
	}()

	logging.Debug("Control connection accepted",
		zap.String("remote_addr", remoteAddr),
	)

	// Reader: any inbound bytes (the init sequence, or later requests)
	// trigger an immediate burst. Closes requests when the peer hangs up.
	requests := make(chan struct{}, 1)
	go func() {
		defer close(requests)
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			logging.LogRawBytes("request received", buf[:n])
			select {
			case requests <- struct{}{}:
			default:
			}
		}
	}()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.emitBurst(conn); err != nil {
		return
	}

	for {
		select {
		case _, ok := <-requests:
			if !ok {
				return
			}
		case <-ticker.C:
		}
		if err := s.emitBurst(conn); err != nil {
			return
		}
	}
}

// emitBurst writes one heartbeat, one live frame, and one Onzen live frame.
func (s *Simulator) emitBurst(conn net.Conn) error {
	var burst []byte
	for _, part := range [][]byte{
		s.buildFrame(protocol.TypeHeartbeat, nil),
		s.buildFrame(protocol.TypeLive, sampleLivePayload()),
		s.buildFrame(protocol.TypeOnzenLive, sampleOnzenPayload()),
	} {
		burst = append(burst, part...)
	}

	if _, err := conn.Write(burst); err != nil {
		return err
	}
	return nil
}

func (s *Simulator) buildFrame(kind protocol.TypeKey, payload []byte) []byte {
	frame, err := protocol.BuildFrame(kind, protocol.NextCounter(), payload)
	if err != nil {
		// Sample payloads are tiny; a build failure is a programming error.
		panic(err)
	}
	return frame
}

// answerQueries replies to BlueFalls discovery queries until the UDP socket
// is closed.
func (s *Simulator) answerQueries() {
	response := []byte(discovery.ResponsePrefix + s.config.Serial)
	buf := make([]byte, 512)

	for {
		n, addr, err := s.udpConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if !bytes.HasPrefix(buf[:n], []byte(discovery.QueryPrefix)) {
			continue
		}

		// Responses go to the protocol's fixed response port on the
		// prober, not back to the query's source port.
		_, err = s.udpConn.WriteToUDP(response, &net.UDPAddr{
			IP:   addr.IP,
			Port: s.config.ResponsePort,
		})
		if err != nil {
			logging.Debug("Discovery response failed",
				zap.String("remote_addr", addr.String()),
				zap.Error(err),
			)
			continue
		}
		logging.Debug("Discovery query answered",
			zap.String("remote_addr", addr.String()),
		)
	}
}

// Shutdown closes the listeners and waits for connection handlers to finish.
func (s *Simulator) Shutdown(ctx context.Context) error {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.udpConn != nil {
		_ = s.udpConn.Close()
	}

	s.mu.Lock()
	for _, conn := range s.activeConns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New("shutdown timed out waiting for connections")
	}
}

// sampleLivePayload builds a plausible live-telemetry payload: water
// temperature, setpoint, and a couple of pump states. Field numbers are
// sample values for bench testing, not the vendor schema.
func sampleLivePayload() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 102) // temperature
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 104) // setpoint
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 1) // pump 1 running
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 0) // pump 2 off
	return b
}

// sampleOnzenPayload builds a plausible Onzen water-treatment payload.
func sampleOnzenPayload() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 72) // pH x10
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 650) // ORP mV
	return b
}
