// Package transport defines the link a host uses to exchange raw wire
// messages with a device -- USB bulk endpoints or a serial port -- as a
// plain io.ReadWriteCloser. See transport/usbtransport and
// transport/serialtransport for the concrete implementations, and Dial for
// the retrying-connect wrapper both share.
package transport

import (
	"io"
	"log"
	"time"

	"github.com/cenkalti/backoff"
)

// Logger receives connection-retry messages. Swap it out to silence or
// redirect them.
var Logger = log.Default()

// Device is a connection to a device: callers Write a whole encoded
// request and Read the answer bytes back, feeding them to a
// wire/streamparse.Parser (which may demand more Read calls before a
// message is complete).
type Device = io.ReadWriteCloser

// Opener establishes a Device connection; usbtransport.Opener and
// serialtransport.Opener build the two shipped implementations.
type Opener func() (Device, error)

// Dial calls open with an exponential backoff retry, so a device that is
// still enumerating does not fail the first connection attempt.
func Dial(open Opener) (Device, error) {
	var dev Device
	op := func() error {
		d, err := open()
		if err != nil {
			Logger.Printf("transport: connect failed, retrying: %v", err)
			return err
		}
		dev = d
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock,
	})
	if err != nil {
		return nil, err
	}
	return dev, nil
}
