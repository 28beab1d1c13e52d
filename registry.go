package bedrock

// registry binds each command type to exactly one Handler. A later
// registration for the same type replaces the earlier one
type registry struct {
	handlers map[CommandType]Handler
}

func newRegistry() *registry {
	return &registry{handlers: map[CommandType]Handler{}}
}

func (r *registry) register(typ CommandType, h Handler) {
	r.handlers[typ] = h
}

func (r *registry) lookup(typ CommandType) (Handler, bool) {
	h, ok := r.handlers[typ]
	return h, ok && h != nil
}
