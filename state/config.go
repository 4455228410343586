package state

import (
	"fmt"
	"slices"
	"time"
)

// NodeCfg describes one routing node of the network.
type NodeCfg struct {
	Id Addr
	// Heartbeat overrides DefaultHeartbeat for this node when non-zero.
	Heartbeat time.Duration `yaml:",omitempty"`
	LogPath   string        `yaml:"log_path,omitempty"` // if not empty, the node will also write its log to this file
}

// LinkCfg describes one bidirectional link. Cost is what the routing protocol
// sees; latency, jitter and loss only shape delivery of frames.
type LinkCfg struct {
	A       Addr
	B       Addr
	Cost    Cost
	Latency time.Duration `yaml:",omitempty"`
	Jitter  time.Duration `yaml:",omitempty"`
	Loss    float64       `yaml:",omitempty"` // drop probability in [0, 1)
}

// EventCfg is a scheduled topology change, relative to network start.
type EventCfg struct {
	At   time.Duration
	Op   string // up, down or cost
	A    Addr
	B    Addr
	Cost Cost `yaml:",omitempty"`
}

// CentralCfg is the whole-network configuration.
type CentralCfg struct {
	Nodes  []NodeCfg
	Links  []LinkCfg
	Events []EventCfg `yaml:",omitempty"`
	// Duration stops the network after this long; 0 runs until interrupted.
	Duration time.Duration `yaml:",omitempty"`
}

// LocalCfg represents node-level configuration
type LocalCfg struct {
	Id        Addr
	Heartbeat time.Duration
	LogPath   string `yaml:"log_path,omitempty"`
}

func (c *CentralCfg) IsNode(id Addr) bool {
	return slices.ContainsFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == id
	})
}

func (c *CentralCfg) GetNode(id Addr) NodeCfg {
	idx := slices.IndexFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		panic("node " + string(id) + " not found")
	}
	return c.Nodes[idx]
}

// LocalFor derives the node-level configuration for id, applying defaults.
func (c *CentralCfg) LocalFor(id Addr) LocalCfg {
	node := c.GetNode(id)
	hb := node.Heartbeat
	if hb == 0 {
		hb = DefaultHeartbeat
	}
	return LocalCfg{
		Id:        node.Id,
		Heartbeat: hb,
		LogPath:   node.LogPath,
	}
}

// FindLink returns the configured link between a and b, in either direction.
func (c *CentralCfg) FindLink(a, b Addr) (LinkCfg, error) {
	for _, link := range c.Links {
		if link.A == a && link.B == b || link.A == b && link.B == a {
			return link, nil
		}
	}
	return LinkCfg{}, fmt.Errorf("no link between %s and %s", a, b)
}
