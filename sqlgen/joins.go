package sqlgen

import (
	"strconv"
	"strings"

	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/internal/debug"
	"github.com/ratanachh/eql/metadata"
)

// boundJoin is a join clause with its metadata resolved: the owning side's
// entity, the relationship it navigates, and the target entity under its
// final alias. Binding happens for all joins before any SQL is rendered so
// select items and ON conditions may reference any declared alias.
type boundJoin struct {
	clause     ast.JoinClause
	rel        metadata.Relationship
	ownerAlias string
	owner      *metadata.Entity
	target     *metadata.Entity
	alias      string

	// many-to-many only
	joinTable *metadata.JoinTable
	linkAlias string
}

func (g *generator) bindJoins(clauses []ast.JoinClause) ([]*boundJoin, error) {
	var bound []*boundJoin
	for _, clause := range clauses {
		ownerAlias := clause.Owner
		if ownerAlias == "" {
			ownerAlias = g.primaryAlias
		}
		owner, ok := g.scopes[ownerAlias]
		if !ok {
			return nil, errf(ErrUnresolvedAlias, "join navigates from undeclared alias %q", ownerAlias)
		}
		rel, ok := owner.Relationship(clause.Property)
		if !ok {
			return nil, errf(ErrUnresolvedRelationship, "entity %q has no relationship %q", owner.Name, clause.Property)
		}
		target, err := g.resolveEntity(rel.Target)
		if err != nil {
			return nil, err
		}

		alias := clause.Alias
		if alias == "" {
			alias = clause.Property
		}
		b := &boundJoin{
			clause:     clause,
			rel:        rel,
			ownerAlias: ownerAlias,
			owner:      owner,
			target:     target,
			alias:      alias,
		}
		if rel.Kind == metadata.ManyToMany {
			if clause.On != nil {
				return nil, errf(ErrUnsupported, "an explicit ON condition cannot replace the link table of a many-to-many join")
			}
			if b.joinTable, err = resolveJoinTable(owner, rel, target); err != nil {
				return nil, err
			}
		}
		if err := g.bind(alias, target); err != nil {
			return nil, err
		}
		if rel.Kind == metadata.ManyToMany {
			b.linkAlias = g.syntheticAlias(alias + "_link")
		}
		bound = append(bound, b)
		debug.Debug("join bound",
			"owner", ownerAlias, "property", clause.Property, "alias", alias, "kind", rel.Kind.String())
	}
	return bound, nil
}

// resolveJoinTable produces the effective link table of a many-to-many
// relationship. A non-owning side follows mappedBy to the owning side and
// swaps the column roles. Missing pieces fall back to convention: the link
// table is named <owningTable>_<otherTable> and its columns <table>_id.
func resolveJoinTable(owner *metadata.Entity, rel metadata.Relationship, target *metadata.Entity) (*metadata.JoinTable, error) {
	var resolved metadata.JoinTable
	nameDefault := owner.Table + "_" + target.Table
	switch {
	case rel.JoinTable != nil:
		resolved = *rel.JoinTable
	case rel.MappedBy != "":
		inverse, ok := target.Relationship(rel.MappedBy)
		if !ok {
			return nil, errf(ErrMissingMappedBy, "mappedBy %q does not exist on entity %q", rel.MappedBy, target.Name)
		}
		if inverse.Kind != metadata.ManyToMany {
			return nil, errf(ErrMissingMappedBy, "mappedBy %q on entity %q is not a many-to-many relationship", rel.MappedBy, target.Name)
		}
		if inverse.JoinTable != nil {
			resolved = metadata.JoinTable{
				Name:           inverse.JoinTable.Name,
				JoinColumns:    inverse.JoinTable.InverseColumns,
				InverseColumns: inverse.JoinTable.JoinColumns,
			}
		}
		// the owning side, here the target, names the link table
		nameDefault = target.Table + "_" + owner.Table
	}
	if resolved.Name == "" {
		resolved.Name = nameDefault
	}
	if len(resolved.JoinColumns) == 0 {
		resolved.JoinColumns = []metadata.JoinColumn{{Name: owner.Table + "_id"}}
	}
	if len(resolved.InverseColumns) == 0 {
		resolved.InverseColumns = []metadata.JoinColumn{{Name: target.Table + "_id"}}
	}
	return &resolved, nil
}

// syntheticAlias reserves an alias that no query-declared alias uses.
func (g *generator) syntheticAlias(base string) string {
	alias := base
	for i := 2; g.taken[alias]; i++ {
		alias = base + strconv.Itoa(i)
	}
	g.taken[alias] = true
	return alias
}

// renderJoin emits the SQL fragments of one bound join: a single JOIN for
// foreign key relationships, two for a many-to-many hop through its link
// table. An explicit ON condition replaces the inferred predicate.
func (g *generator) renderJoin(b *boundJoin) ([]string, error) {
	keyword := b.clause.Type.String()
	if b.rel.Kind == metadata.ManyToMany {
		return g.renderLinkJoin(b, keyword)
	}

	var cond string
	var err error
	if b.clause.On != nil {
		cond, err = g.expr(b.clause.On)
	} else {
		cond, err = g.inferredCondition(b)
	}
	if err != nil {
		return nil, err
	}
	return []string{keyword + " " + g.tableRef(b.target, b.alias) + " ON " + cond}, nil
}

func (g *generator) inferredCondition(b *boundJoin) (string, error) {
	switch b.rel.Kind {
	case metadata.ManyToOne:
		return g.owningCondition(b)
	case metadata.OneToOne:
		if b.rel.Owner || b.rel.JoinColumn != nil {
			return g.owningCondition(b)
		}
		return g.inverseCondition(b)
	case metadata.OneToMany:
		return g.inverseCondition(b)
	default:
		return "", errf(ErrInvalidMetadata, "relationship %q on entity %q has no kind", b.clause.Property, b.owner.Name)
	}
}

// owningCondition joins through the foreign key held on the navigating side:
// owner.join_column = target.referenced_column. The join column defaults to
// the property name with an _id suffix, the referenced column to the
// target's primary key.
func (g *generator) owningCondition(b *boundJoin) (string, error) {
	joinCol := b.clause.Property + "_id"
	referenced := ""
	if b.rel.JoinColumn != nil {
		if b.rel.JoinColumn.Name != "" {
			joinCol = b.rel.JoinColumn.Name
		}
		referenced = b.rel.JoinColumn.Referenced
	}
	if referenced == "" {
		pk, ok := b.target.PrimaryKey()
		if !ok {
			return "", errf(ErrInvalidMetadata, "entity %q needs a primary key to be the target of relationship %q", b.target.Name, b.clause.Property)
		}
		referenced = pk.Column
	}
	return b.ownerAlias + "." + g.d.Quote(joinCol) + " = " + b.alias + "." + g.d.Quote(referenced), nil
}

// inverseCondition follows mappedBy to the foreign key on the target side:
// owner.primary_key = target.owning_join_column. The owning relationship's
// join column defaults exactly as it would when joined from its own side, so
// both directions of a relationship meet on the same predicate.
func (g *generator) inverseCondition(b *boundJoin) (string, error) {
	if b.rel.MappedBy == "" {
		return "", errf(ErrMissingMappedBy, "%s relationship %q on entity %q carries no mappedBy and no join column can be inferred", b.rel.Kind, b.clause.Property, b.owner.Name)
	}
	inverse, ok := b.target.Relationship(b.rel.MappedBy)
	if !ok {
		return "", errf(ErrMissingMappedBy, "mappedBy %q does not exist on entity %q", b.rel.MappedBy, b.target.Name)
	}
	bearing := inverse.Kind == metadata.ManyToOne ||
		(inverse.Kind == metadata.OneToOne && (inverse.Owner || inverse.JoinColumn != nil))
	if !bearing {
		return "", errf(ErrMissingMappedBy, "mappedBy %q on entity %q does not resolve to a join-column-bearing relationship", b.rel.MappedBy, b.target.Name)
	}

	joinCol := b.rel.MappedBy + "_id"
	ownerCol := ""
	if inverse.JoinColumn != nil {
		if inverse.JoinColumn.Name != "" {
			joinCol = inverse.JoinColumn.Name
		}
		ownerCol = inverse.JoinColumn.Referenced
	}
	if ownerCol == "" {
		pk, ok := b.owner.PrimaryKey()
		if !ok {
			return "", errf(ErrInvalidMetadata, "entity %q needs a primary key to join relationship %q", b.owner.Name, b.clause.Property)
		}
		ownerCol = pk.Column
	}
	return b.ownerAlias + "." + g.d.Quote(ownerCol) + " = " + b.alias + "." + g.d.Quote(joinCol), nil
}

// renderLinkJoin emits the two hops of a many-to-many navigation: owner to
// link table, link table to target. Both hops reuse the join type of the
// source clause so LEFT semantics survive the split.
func (g *generator) renderLinkJoin(b *boundJoin, keyword string) ([]string, error) {
	jt := b.joinTable

	ownerConds := make([]string, len(jt.JoinColumns))
	for i, jc := range jt.JoinColumns {
		ownerCol := jc.Referenced
		if ownerCol == "" {
			pk, ok := b.owner.PrimaryKey()
			if !ok {
				return nil, errf(ErrInvalidMetadata, "entity %q needs a primary key to join through %q", b.owner.Name, jt.Name)
			}
			ownerCol = pk.Column
		}
		ownerConds[i] = b.ownerAlias + "." + g.d.Quote(ownerCol) + " = " + b.linkAlias + "." + g.d.Quote(jc.Name)
	}

	targetConds := make([]string, len(jt.InverseColumns))
	for i, jc := range jt.InverseColumns {
		targetCol := jc.Referenced
		if targetCol == "" {
			pk, ok := b.target.PrimaryKey()
			if !ok {
				return nil, errf(ErrInvalidMetadata, "entity %q needs a primary key to join through %q", b.target.Name, jt.Name)
			}
			targetCol = pk.Column
		}
		targetConds[i] = b.linkAlias + "." + g.d.Quote(jc.Name) + " = " + b.alias + "." + g.d.Quote(targetCol)
	}

	first := keyword + " " + g.d.Quote(jt.Name) + " AS " + b.linkAlias + " ON " + strings.Join(ownerConds, " AND ")
	second := keyword + " " + g.tableRef(b.target, b.alias) + " ON " + strings.Join(targetConds, " AND ")
	return []string{first, second}, nil
}
