package state

import (
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

func TestLocalFor_Defaults(t *testing.T) {
	cfg := CentralCfg{
		Nodes: []NodeCfg{
			{Id: "bob"},
			{Id: "jeb", Heartbeat: 250 * time.Millisecond, LogPath: "/tmp/jeb.log"},
		},
	}
	local := cfg.LocalFor("bob")
	assert.Equal(t, DefaultHeartbeat, local.Heartbeat)
	assert.Empty(t, local.LogPath)

	local = cfg.LocalFor("jeb")
	assert.Equal(t, 250*time.Millisecond, local.Heartbeat)
	assert.Equal(t, "/tmp/jeb.log", local.LogPath)
}

func TestFindLink_EitherDirection(t *testing.T) {
	cfg := CentralCfg{
		Nodes: []NodeCfg{{Id: "bob"}, {Id: "jeb"}},
		Links: []LinkCfg{{A: "bob", B: "jeb", Cost: 3}},
	}
	link, err := cfg.FindLink("jeb", "bob")
	assert.NoError(t, err)
	assert.Equal(t, Cost(3), link.Cost)

	_, err = cfg.FindLink("bob", "kat")
	assert.Error(t, err)
}

func TestCentralCfg_Yaml(t *testing.T) {
	doc := `
nodes:
  - id: bob
  - id: jeb
    heartbeat: 500ms
links:
  - a: bob
    b: jeb
    cost: 2
    latency: 10ms
    loss: 0.1
events:
  - at: 3s
    op: down
    a: bob
    b: jeb
duration: 30s
`
	var cfg CentralCfg
	err := yaml.Unmarshal([]byte(doc), &cfg)
	assert.NoError(t, err)
	assert.NoError(t, CentralConfigValidator(&cfg))
	assert.Len(t, cfg.Nodes, 2)
	assert.Equal(t, 500*time.Millisecond, cfg.Nodes[1].Heartbeat)
	assert.Equal(t, Cost(2), cfg.Links[0].Cost)
	assert.Equal(t, 10*time.Millisecond, cfg.Links[0].Latency)
	assert.Equal(t, 0.1, cfg.Links[0].Loss)
	assert.Equal(t, "down", cfg.Events[0].Op)
	assert.Equal(t, 30*time.Second, cfg.Duration)
}
