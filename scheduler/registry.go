package scheduler

import (
	"github.com/google/uuid"
)

// entityKind tags an entity for both name-uniqueness checking and SMT
// variable naming (kind_name_uid_attr, per spec.md §4.1).
type entityKind string

const (
	kindTask       entityKind = "Task"
	kindResource   entityKind = "Resource"
	kindBuffer     entityKind = "Buffer"
	kindIndicator  entityKind = "Indicator"
	kindObjective  entityKind = "Objective"
	kindConstraint entityKind = "Constraint"
)

// registry is the process-wide-per-problem uniqueness guard described in
// spec.md §4.1: every named modeling object registers a (kind, name) pair at
// construction time, and a duplicate pair fails immediately. It is owned
// exclusively by a Problem. Registration stays open after Solver.Solve has
// started; only the Problem's Add* methods reject new entities from then on.
type registry struct {
	names map[entityKind]map[string]struct{}
	seq   uint64
}

func newRegistry() *registry {
	return &registry{names: make(map[entityKind]map[string]struct{})}
}

// register claims (kind, name), returning a DuplicateNameError if another
// entity of the same kind already holds that name.
func (r *registry) register(kind entityKind, name string) error {
	set, ok := r.names[kind]
	if !ok {
		set = make(map[string]struct{})
		r.names[kind] = set
	}
	if _, taken := set[name]; taken {
		return &DuplicateNameError{Kind: string(kind), Name: name}
	}
	set[name] = struct{}{}
	return nil
}

// newUID mirrors the original Python implementation's base._NamedUIDObject,
// which derives each entity's identity from uuid.uuid4().int; we keep only
// the low 32 bits for use inside SMT variable names, which must stay short
// and free of hyphens.
func newUID() uint32 {
	id := uuid.New()
	b := id[:]
	return uint32(b[12])<<24 | uint32(b[13])<<16 | uint32(b[14])<<8 | uint32(b[15])
}

// namedUIDObject is the base embedded by every named modeling entity: Task,
// Resource, Buffer, Indicator, Objective, and Constraint variants. It
// mirrors processscheduler.base._NamedUIDObject's name + uid identity.
type namedUIDObject struct {
	name string
	uid  uint32
}

func newNamedUIDObject(name string) namedUIDObject {
	return namedUIDObject{name: name, uid: newUID()}
}

// Name returns the entity's user-assigned name.
func (n namedUIDObject) Name() string { return n.name }

// UID returns the entity's opaque identifier, drawn by newUID at construction.
func (n namedUIDObject) UID() uint32 { return n.uid }

// varName builds the kind_name_uid_attr SMT variable name spec.md §4.1
// mandates (e.g. "Task_T1_17_start").
func (n namedUIDObject) varName(kind entityKind, attr string) string {
	return string(kind) + "_" + n.name + "_" + itoa(n.uid) + "_" + attr
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
