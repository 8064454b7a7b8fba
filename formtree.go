package consolekit

import "strconv"

// Node is one position in the expanded form tree: a field descriptor paired
// with its FieldPrefix. BuildTree produces nodes from schema and path alone;
// the rendering layer consumes them, so structural recursion stays decoupled
// from event wiring.
type Node struct {
	Field  *Field
	Prefix string

	// Unique is the token fragment and control ids are derived from. It
	// equals the prefix, which is unique by construction.
	Unique string

	// Children holds sub-nodes for embedded fields. Repeated entries and
	// one-of options are expanded on demand with EntryNodes and
	// OptionNodes, since their sub-forms are fetched separately.
	Children []*Node
}

// BuildTree expands a field at parentPrefix into its node.
func BuildTree(f *Field, parentPrefix string) *Node {
	prefix := JoinPrefix(parentPrefix, f.Name)
	n := &Node{Field: f, Prefix: prefix, Unique: prefix}
	if f.Kind == KindEmbedded {
		n.Children = buildChildren(f.Fields, prefix)
	}
	return n
}

// BuildForm expands every top-level field of a schema.
func BuildForm(s *Schema) []*Node {
	return buildChildren(s.Fields, "")
}

// EntryNodes expands the entry fields of a repeated node for one index.
// The entry prefix extends the field prefix with the numeric slot.
func (n *Node) EntryNodes(idx int) []*Node {
	entryPrefix := JoinPrefix(n.Prefix, strconv.Itoa(idx))
	return buildChildren(n.Field.Fields, entryPrefix)
}

// OptionNodes expands the sub-form of one alternative of a one-of node.
// The option prefix extends the field prefix with the option name, so
// switching options tears down a disjoint namespace.
func (n *Node) OptionNodes(option string) []*Node {
	opt, ok := n.Field.OptionByName(option)
	if !ok {
		return nil
	}
	optPrefix := JoinPrefix(n.Prefix, option)
	return buildChildren(opt.Fields, optPrefix)
}

// NodeAt reconstructs the node for an existing FieldPrefix, resolving the
// field through the schema. Hooks dispatched with only a prefix use this to
// recover their position in the tree.
func NodeAt(s *Schema, prefix string) (*Node, bool) {
	f, ok := s.Resolve(prefix)
	if !ok {
		return nil, false
	}
	n := &Node{Field: f, Prefix: prefix, Unique: prefix}
	if f.Kind == KindEmbedded {
		n.Children = buildChildren(f.Fields, prefix)
	}
	return n, true
}

func buildChildren(fields []Field, parentPrefix string) []*Node {
	nodes := make([]*Node, 0, len(fields))
	for i := range fields {
		nodes = append(nodes, BuildTree(&fields[i], parentPrefix))
	}
	return nodes
}
