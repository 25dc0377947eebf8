// Package client implements the poll session against a controller.
//
// A poll is a single bounded conversation: connect to TCP port 65534, send
// the fixed init sequence (a live-telemetry request and an Onzen-telemetry
// request), then read and decode until one frame of every requested packet
// type has been seen or the deadline passes. The connection is closed on
// every exit path.
//
// # Usage Example
//
//	c := client.New("192.168.1.42")
//	frames, err := c.Poll(ctx,
//	    []protocol.TypeKey{protocol.TypeLive, protocol.TypeOnzenLive},
//	    5*time.Second)
//	if err != nil {
//	    var timeout *client.TimeoutError
//	    if errors.As(err, &timeout) {
//	        // controller reachable but slow; timeout.Missing names the gaps
//	    }
//	}
//	fmt.Println(frames[protocol.TypeLive].Decoded)
//
// The lower-level Connect / ReadFrames / Close calls support callers that
// want to stream frames for longer than one poll, such as the watch TUI.
//
// There are no retries at this layer; a dropped connection or a timeout is
// reported once and retry policy belongs to the caller.
package client
