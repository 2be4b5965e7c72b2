// Package params exposes the foreign ABI's IEditController parameter
// surface as four operations (count, info, get, set) and carries the
// GUI-driven edit back-channel: a host-implemented IComponentHandler
// whose performEdit callback is the sole producer into a bounded SPSC
// ring the protocol dispatcher drains on GetParamChanges.
package params

import (
	"fmt"

	"github.com/rack-audio/vst3host/pkg/abi"
	"github.com/rack-audio/vst3host/pkg/hosterr"
)

// Info is an alias of abi.ParameterInfo, exported under this package's
// name so callers in pkg/protocol never need to import pkg/abi directly
// for the parameter surface.
type Info = abi.ParameterInfo

// Controller wraps the plug-in's IEditController plus the ring that
// captures its GUI-driven edits. It does nothing if the plug-in has no
// controller at all — every method below is only reachable once
// pkg/session has confirmed a controller exists.
type Controller struct {
	ec      abi.EditController
	ring    *Ring
	handler abi.ComponentHandler
}

// New wraps an already-acquired EditController and installs this host's
// component-handler object on it, so performEdit calls start flowing
// into the ring immediately.
func New(ec abi.EditController) (*Controller, error) {
	c := &Controller{ec: ec, ring: NewRing()}
	c.handler = abi.NewComponentHandler(abi.EditCallbacks{
		PerformEdit: func(id uint32, value float64) error {
			c.ring.Push(Change{ID: id, Value: value})
			return nil
		},
	})
	if err := ec.SetComponentHandler(c.handler); err != nil {
		c.handler.Close()
		return nil, fmt.Errorf("params: setComponentHandler: %w", err)
	}
	return c, nil
}

// Close releases the host-owned component handler. The controller
// interface itself is released by pkg/session along with the rest of
// the component graph.
func (c *Controller) Close() {
	c.handler.Close()
}

func (c *Controller) Count() int32 {
	return c.ec.GetParameterCount()
}

func (c *Controller) Info(index int32) (Info, error) {
	if index < 0 {
		return Info{}, hosterr.ErrInvalidParam
	}
	if index >= c.Count() {
		return Info{}, hosterr.ErrInvalidParam
	}
	return c.ec.GetParameterInfo(index)
}

func (c *Controller) Get(id uint32) float64 {
	return c.ec.GetParamNormalized(id)
}

func (c *Controller) Set(id uint32, value float64) error {
	if value < 0 || value > 1 {
		return hosterr.ErrInvalidParam
	}
	if err := c.ec.SetParamNormalized(id, value); err != nil {
		return fmt.Errorf("params: setParamNormalized: %w", err)
	}
	return nil
}

// DrainChanges removes and returns every GUI-driven edit queued since
// the last drain. Called by the protocol dispatcher on GetParamChanges.
func (c *Controller) DrainChanges() []Change {
	return c.ring.Drain()
}
