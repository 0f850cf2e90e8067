// Package usbtransport implements transport.Device over USB bulk
// endpoints. Messages are written and read as raw bulk transfers; the
// wire header carries all the framing there is.
package usbtransport

import (
	"fmt"
	"log"

	"github.com/google/gousb"

	"github.com/openbuttnakedgang/ellocopo2/transport"
	"github.com/openbuttnakedgang/ellocopo2/wire/streamparse"
)

// Logger receives visibility-stream decode failures. Swap it out to
// silence or redirect them.
var Logger = log.Default()

// Endpoint numbers the reference firmware uses for the command channel and
// the visibility (unsolicited status) channel.
const (
	CmdOutEndpoint = 1
	CmdInEndpoint  = 1
	VisInEndpoint  = 3
)

// Device is a USB bulk-endpoint transport.Device.
type Device struct {
	ctx    *gousb.Context
	dev    *gousb.Device
	iface  *gousb.Interface
	closer func()
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint
}

// Open claims the default interface of the first device matching vid/pid
// and binds the command in/out endpoints.
func Open(vid, pid uint16) (*Device, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, err
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usbtransport: no device matching vid=%#04x pid=%#04x", vid, pid)
	}
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	iface, closer, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	out, err := iface.OutEndpoint(CmdOutEndpoint)
	if err != nil {
		closer()
		dev.Close()
		ctx.Close()
		return nil, err
	}
	in, err := iface.InEndpoint(CmdInEndpoint)
	if err != nil {
		closer()
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return &Device{ctx: ctx, dev: dev, iface: iface, closer: closer, out: out, in: in}, nil
}

// Opener adapts Open to transport.Opener for use with transport.Dial.
func Opener(vid, pid uint16) transport.Opener {
	return func() (transport.Device, error) { return Open(vid, pid) }
}

// Write sends b as a single bulk OUT transfer.
func (d *Device) Write(b []byte) (int, error) {
	return d.out.Write(b)
}

// Read reads the next bulk IN transfer into b.
func (d *Device) Read(b []byte) (int, error) {
	return d.in.Read(b)
}

// Close releases the interface and device handle.
func (d *Device) Close() error {
	d.closer()
	err := d.dev.Close()
	d.ctx.Close()
	return err
}

// VisibilityListener continuously reads the device's unsolicited status
// endpoint and hands each decoded message to onMsg, until Close is called
// or a read fails. Visibility events reuse the same wire format and
// parser as command answers.
type VisibilityListener struct {
	in     *gousb.InEndpoint
	closer func()
	dev    *gousb.Device
	ctx    *gousb.Context
}

// OpenVisibilityListener claims the default interface of the device
// matching vid/pid and binds its visibility endpoint.
func OpenVisibilityListener(vid, pid uint16) (*VisibilityListener, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, err
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usbtransport: no device matching vid=%#04x pid=%#04x", vid, pid)
	}
	iface, closer, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	in, err := iface.InEndpoint(VisInEndpoint)
	if err != nil {
		closer()
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return &VisibilityListener{in: in, closer: closer, dev: dev, ctx: ctx}, nil
}

// Run reads from the visibility endpoint until it errors (typically because
// Close was called concurrently), decoding each answer with parser and
// calling onMsg for every one it completes. A malformed message is dropped
// and accumulation restarts at the next read, since a push-style status
// stream has no request to retry.
func (v *VisibilityListener) Run(parser *streamparse.Parser, onMsg func(streamparse.Msg)) error {
	buf := make([]byte, 0, 512)
	chunk := make([]byte, 256)
	for {
		n, err := v.in.Read(chunk)
		if err != nil {
			return err
		}
		buf = append(buf, chunk[:n]...)
		msg, err := parser.Parse(buf)
		switch err {
		case nil:
			onMsg(msg)
			buf = buf[:0]
		case streamparse.ErrNeedMoreData:
			// keep accumulating
		default:
			Logger.Printf("usbtransport: dropping malformed visibility message: %v", err)
			parser.Reset()
			buf = buf[:0]
		}
	}
}

// Close releases the visibility endpoint's interface and device handle.
func (v *VisibilityListener) Close() error {
	v.closer()
	err := v.dev.Close()
	v.ctx.Close()
	return err
}
