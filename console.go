package consolekit

// Console bundles the per-page pieces of the toolkit: one registry, one
// bus, one document, the in-process bridge over them, the form engine, and
// the page-wide state. It is the composition root an application builds its
// page from.
type Console struct {
	Registry *Registry
	Bus      *Bus
	Doc      *Document
	Bridge   *LocalBridge
	Engine   *FormEngine
	Page     *PageState
}

// NewConsole wires a fresh page. The ACL workflow is attached separately
// with EnableACL since it needs an application-supplied approval service.
func NewConsole() *Console {
	reg := NewRegistry()
	bus := NewBus()
	doc := NewDocument()
	return &Console{
		Registry: reg,
		Bus:      bus,
		Doc:      doc,
		Bridge:   NewLocalBridge(reg, doc, bus),
		Engine:   NewFormEngine(reg),
		Page:     &PageState{},
	}
}

// EnableACL attaches the approval workflow controller.
func (c *Console) EnableACL(svc ApprovalService) *ACLController {
	return NewACLController(c.Registry, c.Bus, c.Doc, c.Bridge, svc, c.Page)
}

// AddSchema registers a schema with the form engine.
func (c *Console) AddSchema(s *Schema) {
	c.Engine.AddSchema(s)
}

// NewForm instantiates a form for a registered schema.
func (c *Console) NewForm(parentID, unique, schemaName string) (*Form, error) {
	return c.Engine.NewForm(c.Doc, c.Bridge, c.Bus, parentID, unique, schemaName)
}
