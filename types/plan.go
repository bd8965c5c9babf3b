package types

import "fmt"

// Op is the operation a planned action performs on one address.
type Op string

const (
	// OpSkip means the address is already tracked by the declarative tool.
	OpSkip Op = "skip"
	// OpImport binds an untracked live resource to its address.
	OpImport Op = "import"
	// OpCreate provisions a resource that does not exist yet.
	OpCreate Op = "create"
)

// Action is one planned step, keyed by a declarative-tool resource
// address. Actions are produced fresh per run and their order matters:
// network before compute before volumes.
type Action struct {
	Op         Op     `json:"op"`
	Address    string `json:"address"`
	Kind       Kind   `json:"kind"`
	ResourceID string `json:"resource_id,omitempty"`
}

// Validate ensures the action is internally consistent.
func (a Action) Validate() error {
	switch a.Op {
	case OpSkip, OpCreate:
		if a.ResourceID != "" {
			return fmt.Errorf("%s action must not carry a resource id", a.Op)
		}
	case OpImport:
		if a.ResourceID == "" {
			return fmt.Errorf("import action needs a resource id")
		}
	default:
		return fmt.Errorf("unknown op %q", a.Op)
	}
	if a.Address == "" {
		return fmt.Errorf("action address cannot be empty")
	}
	return nil
}

func (a Action) String() string {
	if a.Op == OpImport {
		return fmt.Sprintf("%s %s <- %s", a.Op, a.Address, a.ResourceID)
	}
	return fmt.Sprintf("%s %s", a.Op, a.Address)
}

// Tracked is the set of addresses the declarative tool already manages,
// mapped to their provider ids. The engine queries it but does not own it.
type Tracked map[string]string

// Contains reports whether an address is already tracked.
func (t Tracked) Contains(address string) bool {
	_, ok := t[address]
	return ok
}
