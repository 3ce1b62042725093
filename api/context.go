package api

import (
	"sync"
)

// The context key under which a plugin stores its rejection. The host
// turns the stored error's message into the user-visible denial.
const RejectKey = "reject"

type PluginContext struct {
	Type HookType
	Keys map[string]any

	request  any
	index    uint8
	handlers []PluginHandler
	mu       sync.RWMutex
}

func (c *PluginContext) Set(key string, value any) {
	c.mu.Lock()
	c.Keys[key] = value
	c.mu.Unlock()
}

func (c *PluginContext) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Keys[key]
}

func (c *PluginContext) Request() any {
	return c.request
}

// Reject records err as the hook chain's verdict and stops the
// remaining plugins from running.
func (c *PluginContext) Reject(err error) {
	c.Set(RejectKey, err)
	c.Abort()
}

// RejectedWith returns the stored verdict, nil when no plugin rejected.
func (c *PluginContext) RejectedWith() error {
	if err, ok := c.Get(RejectKey).(error); ok {
		return err
	}
	return nil
}

// This should only be called by the plugin host
func (c *PluginContext) Start() {
	c.index = 0
	for c.index < uint8(len(c.handlers)) {
		if c.handlers[c.index] == nil {
			// This shouldn't happen
			c.Abort()
			continue
		}
		c.handlers[c.index](c)
		c.index++
	}
}

// Plugin could call this to hand over the control to the next plugin.
// When this returned, the caller may continue.
func (c *PluginContext) Next() {
	c.index++
	for c.index < uint8(len(c.handlers)) {
		if c.handlers[c.index] == nil {
			// This shouldn't happen
			c.Abort()
			continue
		}
		c.handlers[c.index](c)
		c.index++
	}
}

// Plugin could call this to prevent the following plugins from being called.
func (c *PluginContext) Abort() {
	c.index = uint8(len(c.handlers))
}

func NewContext(req any, t HookType, hs *[]PluginHandler) *PluginContext {
	return &PluginContext{
		Type:     t,
		Keys:     make(map[string]any),
		request:  req,
		index:    0,
		handlers: *hs,
		mu:       sync.RWMutex{},
	}
}
