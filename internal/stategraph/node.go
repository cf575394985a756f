// Package stategraph drives a Mission through its status lifecycle (spec
// §2/§7): CLASSIFYING → UPLOADING → CLARIFYING? → SPECIFYING → PLANNING →
// AWAITING_APPROVAL? → EXECUTING → {COMPLETED, FAILED, CANCELLED}. Each
// status has exactly one registered Node that performs that phase's work;
// a node reports which Event occurred, and the transition table decides
// the mission's next status. Nodes carry no behavior of their own beyond a
// name and the function implementing the phase — differences between
// phases live entirely in the injected NodeFunc, never in a Node subtype.
package stategraph

import (
	"context"

	"github.com/worldmind/worldmind/internal/models"
)

// Event is emitted by a node's Apply function to select which transition
// edge fires. It carries no payload of its own; node-specific results
// (a product spec, a populated task DAG, dispatch results) are attached to
// the Mission before the event is returned.
type Event string

// NodeFunc performs one phase of mission execution and reports which event
// occurred, or an error if the node faulted. A faulted node always moves
// the mission to FAILED; it never gets to choose the event in that case.
type NodeFunc func(ctx context.Context, mission *models.Mission) (Event, error)

// Node is one named step of the mission graph.
type Node struct {
	Name  string
	Apply NodeFunc
}
