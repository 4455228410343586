package state

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9a-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func NodeConfigValidator(node *LocalCfg) error {
	err := NameValidator(string(node.Id))
	if err != nil {
		return err
	}
	if node.Heartbeat <= 0 {
		return fmt.Errorf("node %s: heartbeat must be positive", node.Id)
	}
	return nil
}

func linkEndpointsValidator(cfg *CentralCfg, a, b Addr) error {
	if a == b {
		return fmt.Errorf("link endpoints must differ, got %s twice", a)
	}
	if !cfg.IsNode(a) {
		return fmt.Errorf("node %s not defined", a)
	}
	if !cfg.IsNode(b) {
		return fmt.Errorf("node %s not defined", b)
	}
	return nil
}

func CentralConfigValidator(cfg *CentralCfg) error {
	seen := make([]Addr, 0, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		if err := NameValidator(string(node.Id)); err != nil {
			return err
		}
		if slices.Contains(seen, node.Id) {
			return fmt.Errorf("duplicate node: %s", node.Id)
		}
		if node.Heartbeat < 0 {
			return fmt.Errorf("node %s: heartbeat must not be negative", node.Id)
		}
		seen = append(seen, node.Id)
	}

	edges := make([]Pair[Addr, Addr], 0, len(cfg.Links))
	for _, link := range cfg.Links {
		if err := linkEndpointsValidator(cfg, link.A, link.B); err != nil {
			return err
		}
		edge := MakeSortedPair(link.A, link.B)
		if slices.Contains(edges, edge) {
			return fmt.Errorf("duplicate link: %s, %s", edge.V1, edge.V2)
		}
		edges = append(edges, edge)
		if link.Cost < 1 || link.Cost >= Infinity {
			return fmt.Errorf("link %s-%s: cost must be in [1, %d), got %d", link.A, link.B, Infinity, link.Cost)
		}
		if link.Latency < 0 || link.Jitter < 0 {
			return fmt.Errorf("link %s-%s: latency and jitter must not be negative", link.A, link.B)
		}
		if link.Loss < 0 || link.Loss >= 1 {
			return fmt.Errorf("link %s-%s: loss must be in [0, 1), got %f", link.A, link.B, link.Loss)
		}
	}

	for _, ev := range cfg.Events {
		if err := linkEndpointsValidator(cfg, ev.A, ev.B); err != nil {
			return err
		}
		if ev.At < 0 {
			return fmt.Errorf("event %s-%s: time must not be negative", ev.A, ev.B)
		}
		switch ev.Op {
		case "up", "cost":
			if ev.Cost < 1 || ev.Cost >= Infinity {
				return fmt.Errorf("event %s %s-%s: cost must be in [1, %d), got %d", ev.Op, ev.A, ev.B, Infinity, ev.Cost)
			}
		case "down":
		default:
			return fmt.Errorf("event %s-%s: unknown op %q", ev.A, ev.B, ev.Op)
		}
	}

	if cfg.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}
