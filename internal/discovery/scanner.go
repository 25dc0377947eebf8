package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mjhall/arcticspa/internal/logging"
)

const (
	// QueryPort is the fixed UDP port controllers listen on for discovery
	// queries.
	QueryPort = 9131

	// ResponsePort is the fixed local UDP port controllers send discovery
	// responses to.
	ResponsePort = 33327

	// DefaultWait is how long each probe waits for its host to answer.
	DefaultWait = 1 * time.Second
)

// Discovery payloads are matched on prefix only; controllers append
// identifying data after the comma.
const (
	QueryPrefix    = "Query,BlueFalls,"
	ResponsePrefix = "Response,BlueFalls,"
)

var (
	queryPrefix    = []byte(QueryPrefix)
	responsePrefix = []byte(ResponsePrefix)
)

// Scanner probes every host of a local subnet for a controller.
//
// One UDP socket is bound on LocalAddr at ResponsePort for the duration of
// the scan; queries to all candidate hosts are sent concurrently from it, and
// any inbound datagram carrying the response prefix marks its sender as a
// controller. The protocol is effectively any-reply: responses are not
// correlated to individual probes.
type Scanner struct {
	// LocalAddr is the IPv4 address of the scanning interface.
	LocalAddr string

	// PrefixLen is the subnet prefix length to enumerate (e.g. 24).
	PrefixLen int

	// QueryPort and ResponsePort override the protocol's fixed ports.
	// Zero values select the defaults; tests point them at a loopback
	// responder.
	QueryPort    int
	ResponsePort int

	// Wait is the per-probe wait window. Zero selects DefaultWait.
	Wait time.Duration
}

// NewScanner creates a scanner for the subnet of localAddr/prefixLen with
// default ports and wait.
func NewScanner(localAddr string, prefixLen int) *Scanner {
	return &Scanner{
		LocalAddr:    localAddr,
		PrefixLen:    prefixLen,
		QueryPort:    QueryPort,
		ResponsePort: ResponsePort,
		Wait:         DefaultWait,
	}
}

// Scan probes the subnet and returns the addresses that answered within the
// wait window, duplicates collapsed, in ascending order. No responders is an
// empty result, not an error.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	local, err := netip.ParseAddr(s.LocalAddr)
	if err != nil || !local.Is4() {
		return nil, fmt.Errorf("invalid local IPv4 address %q", s.LocalAddr)
	}

	prefix, err := local.Prefix(s.PrefixLen)
	if err != nil {
		return nil, fmt.Errorf("invalid prefix length %d: %w", s.PrefixLen, err)
	}

	hosts := subnetHosts(prefix)

	queryPort := s.QueryPort
	if queryPort == 0 {
		queryPort = QueryPort
	}
	responsePort := s.ResponsePort
	if responsePort == 0 {
		responsePort = ResponsePort
	}
	wait := s.Wait
	if wait <= 0 {
		wait = DefaultWait
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP:   local.AsSlice(),
		Port: responsePort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bind discovery listener: %w", err)
	}

	logging.Debug("Starting subnet scan",
		zap.Stringer("subnet", prefix.Masked()),
		zap.Int("hosts", len(hosts)),
		zap.Duration("wait", wait),
	)

	// Responding hosts accumulate under a mutex; the listener goroutine is
	// the only writer but the scan goroutine reads after it exits.
	var (
		mu    sync.Mutex
		found = make(map[string]struct{})
	)

	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		buf := make([]byte, 512)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				// Socket closed by the scan goroutine; the window is over.
				return
			}
			if !bytes.HasPrefix(buf[:n], responsePrefix) {
				continue
			}
			host := addr.IP.String()
			mu.Lock()
			found[host] = struct{}{}
			mu.Unlock()
			logging.Debug("Controller responded",
				zap.String("host", host),
			)
		}
	}()

	// Every probe is dispatched before any blocks on its wait window, so
	// the whole scan costs one window rather than hosts x window.
	var wg sync.WaitGroup
	for _, host := range hosts {
		wg.Add(1)
		go func(host netip.Addr) {
			defer wg.Done()
			_, err := conn.WriteToUDP(queryPrefix, &net.UDPAddr{
				IP:   host.AsSlice(),
				Port: queryPort,
			})
			if err != nil {
				// A dropped query is not retried; the host simply
				// won't appear in the results.
				logging.Debug("Discovery query failed",
					zap.Stringer("host", host),
					zap.Error(err),
				)
				return
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
			}
		}(host)
	}
	wg.Wait()

	conn.Close()
	<-listenerDone

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	hostsFound := make([]string, 0, len(found))
	for host := range found {
		hostsFound = append(hostsFound, host)
	}
	sort.Strings(hostsFound)
	return hostsFound, nil
}

// subnetHosts enumerates the usable host addresses of an IPv4 prefix,
// excluding the network and broadcast addresses. A /31 yields both addresses
// and a /32 yields the single address, per standard CIDR host enumeration.
func subnetHosts(prefix netip.Prefix) []netip.Addr {
	network := prefix.Masked()

	if prefix.Bits() >= 31 {
		var hosts []netip.Addr
		for addr := network.Addr(); network.Contains(addr); addr = addr.Next() {
			hosts = append(hosts, addr)
		}
		return hosts
	}

	var hosts []netip.Addr
	for addr := network.Addr().Next(); network.Contains(addr); addr = addr.Next() {
		hosts = append(hosts, addr)
	}
	if len(hosts) > 0 {
		// Last address in the prefix is the broadcast address.
		hosts = hosts[:len(hosts)-1]
	}
	return hosts
}
