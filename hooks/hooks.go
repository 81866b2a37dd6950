package hooks

// Kind identifies one of the four lifecycle hooks of a suite.
type Kind int

const (
	BeforeAll Kind = iota
	BeforeEach
	AfterEach
	AfterAll

	numKinds
)

// Kinds lists every hook kind in lifecycle order.
var Kinds = []Kind{BeforeAll, BeforeEach, AfterEach, AfterAll}

// String returns the registration name of the hook kind.
func (k Kind) String() string {
	switch k {
	case BeforeAll:
		return "BeforeAll"
	case BeforeEach:
		return "BeforeEach"
	case AfterEach:
		return "AfterEach"
	case AfterAll:
		return "AfterAll"
	default:
		return "unknown"
	}
}

// Registry stores at most one callback per hook kind for a single suite.
type Registry struct {
	callbacks [numKinds]func()
}

// NewRegistry returns a registry where every kind runs a no-op.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set replaces the callback for kind. The last registration wins.
func (r *Registry) Set(kind Kind, fn func()) {
	r.callbacks[kind] = fn
}

// IsSet reports whether a callback was registered for kind.
func (r *Registry) IsSet(kind Kind) bool {
	return r.callbacks[kind] != nil
}

// Run invokes the callback for kind synchronously. Panics raised by the
// callback are not recovered.
func (r *Registry) Run(kind Kind) {
	if fn := r.callbacks[kind]; fn != nil {
		fn()
	}
}
