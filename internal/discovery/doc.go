// Package discovery locates controllers on a local subnet.
//
// Arctic Spa controllers do not advertise themselves; discovery is a
// probe-and-listen protocol. Every usable host address of the given subnet is
// sent a UDP datagram beginning with "Query,BlueFalls," on port 9131, and any
// device that answers sends a datagram beginning with "Response,BlueFalls,"
// back to port 33327 on the prober. Matching is prefix-based.
//
// # Usage Example
//
//	scanner := discovery.NewScanner("192.168.100.5", 24)
//	hosts, err := scanner.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Found %d controllers\n", len(hosts))
//
// # Network Requirements
//
//   - The scanning machine must hold the local address being bound.
//   - UDP ports 9131 (outbound) and 33327 (inbound) must be open.
//   - Controllers must be on the enumerated subnet.
//
// # Thread Safety
//
// A Scanner is immutable during Scan; concurrent scans need separate
// Scanners since each binds the fixed response port.
package discovery
