// Package story runs the Verdant Hollow adventure as a state machine over
// named nodes. Sessions carry all mutable state; the graph itself is
// read-only once built.
package story

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/verdant-hollow/pkg/player"
)

// NodeID names a decision point.
type NodeID string

const (
	NodeIntro     NodeID = "intro"
	NodeForest    NodeID = "forest"
	NodeGoblin    NodeID = "goblin"
	NodeHuman     NodeID = "human"
	NodeDragon    NodeID = "dragon"
	NodeHut       NodeID = "hut"
	NodePotion    NodeID = "potion"
	NodeLadder    NodeID = "ladder"
	NodeExcalibur NodeID = "excalibur"
	NodeDoor      NodeID = "door"
	NodeMonster   NodeID = "monster"

	// Dynamic path
	NodeEncounter NodeID = "encounter"
	NodeBattle    NodeID = "battle"
	NodeContinue  NodeID = "continue"

	// Terminal
	NodeDead       NodeID = "dead"
	NodeVictory    NodeID = "victory"
	NodeWalkedAway NodeID = "walked_away"
	NodeRetired    NodeID = "retired"
)

// Kind selects how a node consumes input.
type Kind string

const (
	KindChoice    Kind = "choice"
	KindEncounter Kind = "encounter"
	KindBattle    Kind = "battle"
	KindTerminal  Kind = "terminal"
)

// Check is one dice resolution on an edge. A check draws from [Min, Max]
// when Max is set and from [1, Sides] otherwise, then adds every listed
// stat and Bonus. It passes when the total reaches Threshold.
type Check struct {
	Label     string        `json:"label"`
	Sides     int           `json:"sides,omitempty"`
	Min       int           `json:"min,omitempty"`
	Max       int           `json:"max,omitempty"`
	Stats     []player.Stat `json:"stats"`
	Bonus     int           `json:"bonus,omitempty"`
	Threshold int           `json:"threshold"`
	Fail      Branch        `json:"fail"`
}

// Branch is the effect of taking an edge. Fields apply in a fixed order:
// level up, max health, health, items removed, items added, reputation and
// corruption, luck event. Kill zeroes health.
type Branch struct {
	Text         string   `json:"text"`
	Next         NodeID   `json:"next"`
	Stage        string   `json:"stage,omitempty"`
	LevelUp      bool     `json:"level_up,omitempty"`
	SetMaxHealth int      `json:"set_max_health,omitempty"`
	SetHealth    int      `json:"set_health,omitempty"`
	Kill         bool     `json:"kill,omitempty"`
	RemoveItems  []string `json:"remove_items,omitempty"`
	AddItems     []string `json:"add_items,omitempty"`
	Reputation   int      `json:"reputation,omitempty"`
	Corruption   int      `json:"corruption,omitempty"`
	LuckEvent    bool     `json:"luck_event,omitempty"`
}

// Edge is one option at a choice node. Checks run in order and the first
// failure takes that check's Fail branch.
type Edge struct {
	Keys    []string `json:"keys"`
	Label   string   `json:"label"`
	Checks  []Check  `json:"checks,omitempty"`
	Success Branch   `json:"success"`
}

// Node is a decision point. Stage is the marker the game writes when it
// arrives here without taking an edge, such as after an encounter.
type Node struct {
	ID     NodeID `json:"id"`
	Kind   Kind   `json:"kind"`
	Prompt string `json:"prompt"`
	Stage  string `json:"stage,omitempty"`
	Edges  []Edge `json:"edges,omitempty"`
}

// Terminal reports whether play stops at this node.
func (n *Node) Terminal() bool { return n.Kind == KindTerminal }

// Match returns the edge selected by input. Keys compare case-insensitively
// after trimming.
func (n *Node) Match(input string) (*Edge, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	for i := range n.Edges {
		for _, k := range n.Edges[i].Keys {
			if in == k {
				return &n.Edges[i], true
			}
		}
	}
	return nil, false
}

// Choices lists the edge labels in order.
func (n *Node) Choices() []string {
	out := make([]string, 0, len(n.Edges))
	for _, e := range n.Edges {
		out = append(out, e.Label)
	}
	return out
}

// Branches returns every branch reachable from the node's edges.
func (n *Node) Branches() []Branch {
	var out []Branch
	for _, e := range n.Edges {
		out = append(out, e.Success)
		for _, c := range e.Checks {
			out = append(out, c.Fail)
		}
	}
	return out
}

// Graph is a validated set of nodes plus the resume table derived from it.
type Graph struct {
	nodes  map[NodeID]*Node
	order  []NodeID
	start  NodeID
	resume map[string]NodeID
}

// NewGraph indexes nodes, derives the stage table and validates both.
// Every branch target must exist, a stage must always lead to the same
// node, and every node must be reachable from start.
func NewGraph(start NodeID, nodes []Node) (*Graph, error) {
	g := &Graph{
		nodes:  make(map[NodeID]*Node, len(nodes)),
		start:  start,
		resume: make(map[string]NodeID),
	}
	for i := range nodes {
		n := nodes[i]
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.ID)
		}
		if n.Kind == KindChoice && len(n.Edges) == 0 {
			return nil, fmt.Errorf("choice node %q has no edges", n.ID)
		}
		g.nodes[n.ID] = &n
		g.order = append(g.order, n.ID)
	}
	if _, ok := g.nodes[start]; !ok {
		return nil, fmt.Errorf("start node %q not defined", start)
	}

	for _, id := range g.order {
		if err := g.addStage(g.nodes[id].Stage, id); err != nil {
			return nil, err
		}
		for _, b := range g.nodes[id].Branches() {
			if _, ok := g.nodes[b.Next]; !ok {
				return nil, fmt.Errorf("node %q branches to unknown node %q", id, b.Next)
			}
			if err := g.addStage(b.Stage, b.Next); err != nil {
				return nil, err
			}
		}
	}

	if missing := g.unreachable(); len(missing) > 0 {
		return nil, fmt.Errorf("unreachable nodes: %v", missing)
	}
	return g, nil
}

func (g *Graph) addStage(stage string, next NodeID) error {
	if stage == "" {
		return nil
	}
	if prev, seen := g.resume[stage]; seen && prev != next {
		return fmt.Errorf("stage %q resumes at both %q and %q", stage, prev, next)
	}
	g.resume[stage] = next
	return nil
}

// implicitLinks are transitions the game makes outside of edges.
var implicitLinks = map[NodeID][]NodeID{
	NodeEncounter: {NodeBattle, NodeContinue, NodeDead, NodeRetired},
	NodeBattle:    {NodeContinue, NodeDead, NodeRetired},
}

func (g *Graph) unreachable() []NodeID {
	seen := map[NodeID]bool{g.start: true}
	queue := []NodeID{g.start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		var next []NodeID
		for _, b := range g.nodes[id].Branches() {
			next = append(next, b.Next)
		}
		next = append(next, implicitLinks[id]...)
		for _, n := range next {
			if _, ok := g.nodes[n]; ok && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	var missing []NodeID
	for _, id := range g.order {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Start is the node a new run begins at.
func (g *Graph) Start() NodeID { return g.start }

// Resume maps a saved stage marker to the node that runs next. Unknown or
// empty markers start over.
func (g *Graph) Resume(stage string) NodeID {
	if id, ok := g.resume[stage]; ok {
		return id
	}
	return g.start
}

// Stages returns every stage marker the graph can write, sorted.
func (g *Graph) Stages() []string {
	out := make([]string, 0, len(g.resume))
	for s := range g.resume {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Nodes returns node ids in definition order.
func (g *Graph) Nodes() []NodeID {
	return append([]NodeID(nil), g.order...)
}
