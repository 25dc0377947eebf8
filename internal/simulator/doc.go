// Package simulator provides a fake Arctic Spa controller.
//
// The simulator binds a TCP listener that speaks the frame protocol —
// heartbeats, live telemetry, and Onzen telemetry with protobuf-encoded
// sample payloads — and an optional UDP responder that answers BlueFalls
// discovery queries. It backs the arcticspa-sim binary and the client and
// discovery tests, so the tools can be exercised without hardware.
//
// Sample payload field values are invented; the vendor schemas are
// proprietary. The framing, ports, and discovery exchange match the real
// controller.
package simulator
