package scpi

// Context carries the state that persists across the response units of
// one program message: the current header path, for sibling-relative
// addressing within the message, and the ResponseWriter that message
// is draining into, so a handler's *STB? can see whether an earlier
// unit in the same message already produced output.
type Context struct {
	path   []*Node
	writer *ResponseWriter
}

// newContext creates a Context rooted at root, the state at the start
// of every new program message.
func newContext(root *Node) *Context {
	return &Context{path: []*Node{root}}
}

// resetPath returns the header path to the tree root; a leading ':' or
// the start of a new message both do this.
func (c *Context) resetPath(root *Node) {
	c.path = c.path[:0]
	c.path = append(c.path, root)
}

func (c *Context) current() *Node {
	return c.path[len(c.path)-1]
}

// descend appends n to the header path, the state after successfully
// resolving one mnemonic.
func (c *Context) descend(n *Node) {
	c.path = append(c.path, n)
}

// MAV reports whether an earlier unit in this same message has
// already produced response data awaiting the controller; *STB? ORs
// this into bit 4 (Message Available) of the status byte.
func (c *Context) MAV() bool { return c.writer != nil && c.writer.produced }
