// Package metadata describes how entity types map onto relational tables.
//
// The structures here are produced by whatever discovers or declares the
// object/relational mapping and are consumed read-only by the SQL generator.
// Nothing in this module mutates them after construction; publish an Entity
// before sharing it across goroutines and it can be read concurrently.
package metadata

// RelationKind is the cardinality of a relationship property.
type RelationKind int

const (
	OneToOne RelationKind = iota + 1
	OneToMany
	ManyToOne
	ManyToMany
)

func (k RelationKind) String() string {
	switch k {
	case OneToOne:
		return "OneToOne"
	case OneToMany:
		return "OneToMany"
	case ManyToOne:
		return "ManyToOne"
	case ManyToMany:
		return "ManyToMany"
	default:
		return "Unknown"
	}
}

// GenerationStrategy tags how a primary key value is produced on insert.
// The query core only transports the tag; execution layers act on it.
type GenerationStrategy int

const (
	GenerateNone GenerationStrategy = iota
	GenerateIdentity
	GenerateSequence
	GenerateUUID
)

func (g GenerationStrategy) String() string {
	switch g {
	case GenerateIdentity:
		return "identity"
	case GenerateSequence:
		return "sequence"
	case GenerateUUID:
		return "uuid"
	default:
		return "none"
	}
}

// Property maps one entity property onto a table column.
type Property struct {
	Name       string
	Column     string
	PrimaryKey bool
	Generated  GenerationStrategy
}

// JoinColumn names a foreign key column and the column it references on the
// other side. Referenced may be empty, in which case the referenced entity's
// primary key column is assumed.
type JoinColumn struct {
	Name       string
	Referenced string
}

// JoinTable describes the link table of a many-to-many relationship.
// JoinColumns point back at the owning side, InverseColumns at the target.
type JoinTable struct {
	Name           string
	JoinColumns    []JoinColumn
	InverseColumns []JoinColumn
}

// Relationship describes a navigable association from one entity to another.
//
// Exactly one side of a bidirectional relationship owns it. The owning side
// carries the foreign key (JoinColumn) or the link table (JoinTable); the
// inverse side carries MappedBy naming the owning property on the target.
type Relationship struct {
	Kind       RelationKind
	Target     string // entity name, resolved through a Lookup
	Owner      bool
	MappedBy   string
	JoinColumn *JoinColumn
	JoinTable  *JoinTable
}

// Entity is the relational mapping of one entity type. Properties keep
// declaration order; SELECT expansion of a bare alias walks them in order.
type Entity struct {
	Name          string
	Schema        string // optional
	Table         string
	Properties    []Property
	Relationships map[string]Relationship
}

// Property returns the mapped property with the given name.
func (e *Entity) Property(name string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// PrimaryKey returns the entity's primary key property.
func (e *Entity) PrimaryKey() (Property, bool) {
	for _, p := range e.Properties {
		if p.PrimaryKey {
			return p, true
		}
	}
	return Property{}, false
}

// Relationship returns the relationship stored under the given property name.
func (e *Entity) Relationship(name string) (Relationship, bool) {
	rel, ok := e.Relationships[name]
	return rel, ok
}
