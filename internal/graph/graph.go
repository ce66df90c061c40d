/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrGraphClosed is returned by any mutating operation on a torn-down graph.
var ErrGraphClosed = errors.New("graph: closed")

// Graph holds the processing-graph topology: a node registry plus an
// adjacency list of connections, exactly the {ID, Nodes} shape the DSP
// compiler used, generalized from a pipeline string to live topology.
type Graph struct {
	mu     sync.RWMutex
	id     string
	nodes  map[string]Node
	edges  map[string][]string
	closed bool

	chainInputID string
	chainEndID   string

	logger zerolog.Logger
}

// NewGraph creates an empty graph.
func NewGraph(id string, logger zerolog.Logger) *Graph {
	return &Graph{
		id:     id,
		nodes:  make(map[string]Node),
		edges:  make(map[string][]string),
		logger: logger.With().Str("component", "graph").Str("graph_id", id).Logger(),
	}
}

// AddNode registers a node. Overwrites silently if the ID is already present.
func (g *Graph) AddNode(n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}
	g.nodes[n.ID()] = n
	return nil
}

// RemoveNode deregisters a node and any edges touching it.
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.nodes, id)
	delete(g.edges, id)
	for from, tos := range g.edges {
		filtered := tos[:0]
		for _, to := range tos {
			if to != id {
				filtered = append(filtered, to)
			}
		}
		g.edges[from] = filtered
	}
}

// Node looks up a registered node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Connect wires from -> to. Both must already be registered.
func (g *Graph) Connect(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("graph: connect: unknown source node %q", from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("graph: connect: unknown destination node %q", to)
	}
	g.edges[from] = append(g.edges[from], to)
	return nil
}

// Disconnect removes a single from->to edge, if present.
func (g *Graph) Disconnect(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disconnectLocked(from, to)
}

func (g *Graph) disconnectLocked(from, to string) {
	tos := g.edges[from]
	for i, candidate := range tos {
		if candidate == to {
			g.edges[from] = append(tos[:i], tos[i+1:]...)
			return
		}
	}
}

// Connections returns the outgoing edges of a node, in connection order.
func (g *Graph) Connections(from string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.edges[from]...)
}

// SetChainInput/SetChainEnd record the glossary's "chain input node" (the
// mixer in dual mode, else the primary source) and "chain end node" (the
// last effect node before destination).
func (g *Graph) SetChainInput(id string) { g.mu.Lock(); g.chainInputID = id; g.mu.Unlock() }
func (g *Graph) SetChainEnd(id string)   { g.mu.Lock(); g.chainEndID = id; g.mu.Unlock() }

// ChainInputNode returns the current chain input node, if any.
func (g *Graph) ChainInputNode() (Node, bool) {
	g.mu.RLock()
	id := g.chainInputID
	g.mu.RUnlock()
	if id == "" {
		return nil, false
	}
	return g.Node(id)
}

// ChainEndNode returns the current chain end node, if any.
func (g *Graph) ChainEndNode() (Node, bool) {
	g.mu.RLock()
	id := g.chainEndID
	g.mu.RUnlock()
	if id == "" {
		return nil, false
	}
	return g.Node(id)
}

// InsertAnalyser splices an externally-supplied analyser node between the
// chain end node and destination (§6 "insertAnalyser"). Returns the
// analyser's node ID, which callers should keep to pass to RemoveAnalyser.
func (g *Graph) InsertAnalyser(id string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return "", ErrGraphClosed
	}
	if g.chainEndID == "" {
		return "", fmt.Errorf("graph: insert analyser: no chain end node")
	}
	g.nodes[id] = NewAnalyserNode(id)
	g.disconnectLocked(g.chainEndID, "destination")
	g.edges[g.chainEndID] = append(g.edges[g.chainEndID], id)
	g.edges[id] = append(g.edges[id], "destination")
	return id, nil
}

// RemoveAnalyser reverses InsertAnalyser, reconnecting the chain end node
// directly to destination and releasing the analyser node.
func (g *Graph) RemoveAnalyser(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.nodes, id)
	delete(g.edges, id)
	if g.chainEndID != "" {
		g.disconnectLocked(g.chainEndID, id)
		g.edges[g.chainEndID] = append(g.edges[g.chainEndID], "destination")
	}
}

// Nodes returns every registered node, in no particular order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Teardown releases every node and edge, closing the graph. A rebuild
// requires a fresh Graph via Builder.Build.
func (g *Graph) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = make(map[string]Node)
	g.edges = make(map[string][]string)
	g.chainInputID = ""
	g.chainEndID = ""
	g.closed = true
	g.logger.Debug().Msg("graph torn down")
}
