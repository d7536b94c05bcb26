// Package graph runs small state machines: named nodes that transform a shared
// State, joined by fixed edges or by condition nodes that pick the next hop.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// NodeType represents the type of a node in the graph
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeEnd       NodeType = "end"
	NodeTypeStep      NodeType = "step"
	NodeTypeCondition NodeType = "condition"
)

// ErrLoopLimit is returned when a node is entered more often than the graph allows.
var ErrLoopLimit = errors.New("graph: visit limit exceeded")

// DefaultMaxVisits bounds how often a single node may run in one execution.
const DefaultMaxVisits = 10

// State represents the execution state passed between nodes
type State map[string]any

// NodeFunc is the function executed by a node
type NodeFunc func(context.Context, State) (State, error)

// ConditionFunc evaluates a condition and returns a key of the node's NextMap.
type ConditionFunc func(context.Context, State) (string, error)

// Node represents a node in the execution graph
type Node struct {
	Name      string
	Type      NodeType
	Execute   NodeFunc
	Condition ConditionFunc     // Only for condition nodes
	Next      string            // Outgoing edge for non-condition nodes
	NextMap   map[string]string // For condition nodes: condition result -> next node
}

// Graph represents an execution flow graph
type Graph struct {
	nodes     map[string]*Node
	startNode string
	endNode   string
	maxVisits int
}

// Execute walks the graph from the start node until the end node runs.
// Every node executes at most maxVisits times; exceeding that returns an
// error wrapping ErrLoopLimit.
func (g *Graph) Execute(ctx context.Context, initial State) (State, error) {
	state := initial
	if state == nil {
		state = make(State)
	}

	visits := make(map[string]int, len(g.nodes))
	current := g.startNode
	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := g.nodes[current]
		if !ok {
			return state, fmt.Errorf("graph: node %s not found", current)
		}
		visits[current]++
		if visits[current] > g.maxVisits {
			return state, fmt.Errorf("node %s entered %d times: %w", current, visits[current], ErrLoopLimit)
		}

		if node.Type == NodeTypeCondition {
			result, err := node.Condition(ctx, state)
			if err != nil {
				return state, fmt.Errorf("error evaluating condition at node %s: %w", node.Name, err)
			}
			next, ok := node.NextMap[result]
			if !ok {
				return state, fmt.Errorf("graph: condition %s returned unmapped result %q", node.Name, result)
			}
			current = next
			continue
		}

		if node.Execute != nil {
			out, err := node.Execute(ctx, state)
			if err != nil {
				return state, fmt.Errorf("error executing node %s: %w", node.Name, err)
			}
			if out != nil {
				state = out
			}
		}

		if node.Name == g.endNode {
			return state, nil
		}
		if node.Next == "" {
			return state, fmt.Errorf("graph: no next node specified for node %s", node.Name)
		}
		current = node.Next
	}
}

// MaxVisits reports the configured per-node visit limit.
func (g *Graph) MaxVisits() int {
	return g.maxVisits
}

// Builder helps build graphs fluently. The first error encountered is
// reported by Build.
type Builder struct {
	graph *Graph
	err   error
}

// NewBuilder creates a new graph builder
func NewBuilder() *Builder {
	return &Builder{
		graph: &Graph{
			nodes:     make(map[string]*Node),
			maxVisits: DefaultMaxVisits,
		},
	}
}

func (b *Builder) fail(format string, args ...any) *Builder {
	if b.err == nil {
		b.err = fmt.Errorf("graph: "+format, args...)
	}
	return b
}

func (b *Builder) add(node *Node) *Builder {
	if node.Name == "" {
		return b.fail("node name cannot be empty")
	}
	if _, exists := b.graph.nodes[node.Name]; exists {
		return b.fail("node %s already exists", node.Name)
	}
	b.graph.nodes[node.Name] = node
	switch node.Type {
	case NodeTypeStart:
		b.graph.startNode = node.Name
	case NodeTypeEnd:
		b.graph.endNode = node.Name
	}
	return b
}

// AddNode adds a start, end or step node. Start and end nodes may have a nil
// execute function.
func (b *Builder) AddNode(name string, nodeType NodeType, execute NodeFunc) *Builder {
	if nodeType == NodeTypeCondition {
		return b.fail("use AddConditionNode for condition node %s", name)
	}
	if nodeType == NodeTypeStep && execute == nil {
		return b.fail("step node %s must have an execute function", name)
	}
	return b.add(&Node{Name: name, Type: nodeType, Execute: execute})
}

// AddConditionNode adds a condition node
func (b *Builder) AddConditionNode(name string, condition ConditionFunc, nextMap map[string]string) *Builder {
	if condition == nil {
		return b.fail("condition node %s must have a condition function", name)
	}
	return b.add(&Node{Name: name, Type: NodeTypeCondition, Condition: condition, NextMap: nextMap})
}

// AddEdge connects two nodes
func (b *Builder) AddEdge(from, to string) *Builder {
	node, exists := b.graph.nodes[from]
	if !exists {
		return b.fail("edge from unknown node %s", from)
	}
	if node.Type == NodeTypeCondition {
		return b.fail("condition node %s routes through its next map", from)
	}
	if node.Next != "" && node.Next != to {
		return b.fail("node %s already has an edge to %s", from, node.Next)
	}
	node.Next = to
	return b
}

// SetMaxVisits sets the maximum number of visits to a node
func (b *Builder) SetMaxVisits(maxVisits int) *Builder {
	if maxVisits <= 0 {
		return b.fail("max visits must be positive, got %d", maxVisits)
	}
	b.graph.maxVisits = maxVisits
	return b
}

// Build validates and returns the constructed graph.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	g := b.graph
	if g.startNode == "" {
		return nil, errors.New("graph: start node not set")
	}
	if g.endNode == "" {
		return nil, errors.New("graph: end node not set")
	}
	for _, node := range g.nodes {
		targets := []string{node.Next}
		for _, next := range node.NextMap {
			targets = append(targets, next)
		}
		for _, target := range targets {
			if target == "" {
				continue
			}
			if _, ok := g.nodes[target]; !ok {
				return nil, fmt.Errorf("graph: node %s points to unknown node %s", node.Name, target)
			}
		}
	}
	return g, nil
}
