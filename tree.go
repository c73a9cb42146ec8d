package scpi

// EventFunc implements the event (non-query) form of a command.
type EventFunc func(dev Device, ctx *Context, args *Arguments) error

// QueryFunc implements the query ('?') form of a command, writing its
// response into resp.
type QueryFunc func(dev Device, ctx *Context, args *Arguments, resp *ResponseUnit) error

// Handler holds a node's event and/or query implementation. A node may
// support either, both, or (if a pure branch) neither.
type Handler struct {
	Event EventFunc
	Query QueryFunc
}

// Node is one element of the static command tree. Node.Name is the
// canonical mnemonic pattern, e.g. "SENSe" or "IDN" (common commands
// are named without their '*'), matched against received mnemonics per
// MatchMnemonic. At most one child of a given
// node may be marked Default; it is the node implicitly descended into
// when none of its siblings match, modeling SCPI's "[:optional]" header
// components.
type Node struct {
	Name     string
	Default  bool
	Handler  *Handler
	Children []*Node
}

func (n *Node) defaultChild() *Node {
	for _, c := range n.Children {
		if c.Default {
			return c
		}
	}
	return nil
}

// Leaf builds a terminal node with a handler and no children.
func Leaf(name string, h *Handler) *Node {
	return &Node{Name: name, Handler: h}
}

// DefaultLeaf builds a terminal node marked as its parent's implicit
// child (e.g. the EVENt node under STATus:OPERation[:EVENt]?).
func DefaultLeaf(name string, h *Handler) *Node {
	return &Node{Name: name, Handler: h, Default: true}
}

// Branch builds a pure routing node with no handler of its own.
func Branch(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// DefaultBranch builds a routing node marked as its parent's implicit
// child.
func DefaultBranch(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children, Default: true}
}

// BranchWith builds a routing node that also has its own handler
// (invoked when the header path ends exactly at this node).
func BranchWith(name string, h *Handler, children ...*Node) *Node {
	return &Node{Name: name, Handler: h, Children: children}
}

// Event wraps an event-only implementation.
func Event(f EventFunc) *Handler { return &Handler{Event: f} }

// Query wraps a query-only implementation.
func Query(f QueryFunc) *Handler { return &Handler{Query: f} }

// Both wraps an implementation supporting both forms.
func Both(e EventFunc, q QueryFunc) *Handler { return &Handler{Event: e, Query: q} }

// Root builds the anonymous root of a command tree from its top-level
// children.
func Root(children ...*Node) *Node {
	return &Node{Name: "", Children: children}
}
