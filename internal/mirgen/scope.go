package mirgen

import (
	"github.com/vasiltop/compiler/internal/mir"
	"github.com/vasiltop/compiler/internal/source"
	"github.com/vasiltop/compiler/internal/types"
)

// ScopeID addresses a scope in a ScopeArena.
type ScopeID int32

// NoScope is the parent of the root scope.
const NoScope ScopeID = -1

// Local is a variable bound to a stack slot.
type Local struct {
	Name     string
	Slot     mir.ValueID
	Type     types.Type
	Location source.Location
}

// Scope maps names to locals and links to its enclosing scope.
type Scope struct {
	Parent ScopeID
	names  map[string]*Local
}

// ScopeArena owns every scope of the function being lowered. Scopes are
// never freed individually; the arena is dropped with the function.
type ScopeArena struct {
	scopes []Scope
}

// NewScopeArena creates an arena holding only the root scope.
func NewScopeArena() *ScopeArena {
	a := &ScopeArena{}
	a.Push(NoScope)
	return a
}

// Root is the function-level scope holding the parameters.
func (a *ScopeArena) Root() ScopeID { return 0 }

// Push creates a child of parent.
func (a *ScopeArena) Push(parent ScopeID) ScopeID {
	a.scopes = append(a.scopes, Scope{Parent: parent, names: make(map[string]*Local)})
	return ScopeID(len(a.scopes) - 1)
}

// Parent returns the enclosing scope of id.
func (a *ScopeArena) Parent(id ScopeID) ScopeID {
	return a.scopes[id].Parent
}

// Declare binds local in scope id. If the name is already bound in that
// same scope, the earlier binding is returned and nothing changes.
func (a *ScopeArena) Declare(id ScopeID, local *Local) (*Local, bool) {
	names := a.scopes[id].names
	if prev, dup := names[local.Name]; dup {
		return prev, false
	}
	names[local.Name] = local
	return local, true
}

// Resolve looks name up in id and then in each enclosing scope.
func (a *ScopeArena) Resolve(id ScopeID, name string) (*Local, bool) {
	for id != NoScope {
		if local, ok := a.scopes[id].names[name]; ok {
			return local, true
		}
		id = a.Parent(id)
	}
	return nil, false
}

// Len is the number of scopes created so far.
func (a *ScopeArena) Len() int { return len(a.scopes) }
