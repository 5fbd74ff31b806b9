package sqlgen_test

import (
	"testing"
	"time"

	"github.com/ratanachh/eql/ast"
	"github.com/ratanachh/eql/dialect"
	"github.com/ratanachh/eql/metadata"
	"github.com/ratanachh/eql/parser"
	"github.com/ratanachh/eql/sqlgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shopRegistry wires the metadata shared by the generator tests: a small
// commerce model exercising every relationship kind the resolver understands.
func shopRegistry(tb testing.TB) *metadata.Registry {
	tb.Helper()

	customer := &metadata.Entity{
		Name:  "Customer",
		Table: "customers",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true, Generated: metadata.GenerateIdentity},
			{Name: "Name", Column: "name"},
			{Name: "Email", Column: "email"},
		},
		Relationships: map[string]metadata.Relationship{
			"orders":   {Kind: metadata.OneToMany, Target: "Order", MappedBy: "customer"},
			"referrer": {Kind: metadata.ManyToOne, Target: "Customer"},
		},
	}
	order := &metadata.Entity{
		Name:  "Order",
		Table: "orders",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true, Generated: metadata.GenerateIdentity},
			{Name: "Total", Column: "total"},
			{Name: "Status", Column: "status"},
			{Name: "Created", Column: "created_at"},
		},
		Relationships: map[string]metadata.Relationship{
			"customer": {Kind: metadata.ManyToOne, Target: "Customer", Owner: true, JoinColumn: &metadata.JoinColumn{Name: "customer_id"}},
			"items":    {Kind: metadata.OneToMany, Target: "Item", MappedBy: "order"},
			"tags":     {Kind: metadata.ManyToMany, Target: "Tag", Owner: true},
		},
	}
	item := &metadata.Entity{
		Name:  "Item",
		Table: "order_items",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true},
			{Name: "Sku", Column: "sku"},
			{Name: "Price", Column: "price"},
			{Name: "Quantity", Column: "quantity"},
		},
		Relationships: map[string]metadata.Relationship{
			"order": {Kind: metadata.ManyToOne, Target: "Order", Owner: true},
		},
	}
	tag := &metadata.Entity{
		Name:  "Tag",
		Table: "tags",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true},
			{Name: "Label", Column: "label"},
		},
		Relationships: map[string]metadata.Relationship{
			"orders": {Kind: metadata.ManyToMany, Target: "Order", MappedBy: "tags"},
		},
	}
	user := &metadata.Entity{
		Name:  "User",
		Table: "users",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true},
			{Name: "Name", Column: "name"},
		},
		Relationships: map[string]metadata.Relationship{
			"profile": {Kind: metadata.OneToOne, Target: "Profile", MappedBy: "user"},
		},
	}
	profile := &metadata.Entity{
		Name:  "Profile",
		Table: "profiles",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true},
			{Name: "Bio", Column: "bio"},
		},
		Relationships: map[string]metadata.Relationship{
			"user": {Kind: metadata.OneToOne, Target: "User", Owner: true, JoinColumn: &metadata.JoinColumn{Name: "user_id"}},
		},
	}
	lead := &metadata.Entity{
		Name:   "Lead",
		Schema: "crm",
		Table:  "leads",
		Properties: []metadata.Property{
			{Name: "Id", Column: "id", PrimaryKey: true},
			{Name: "Source", Column: "source"},
		},
	}

	reg := metadata.NewRegistry()
	require.NoError(tb, reg.Register(customer, order, item, tag, user, profile, lead))
	return reg
}

func primaryOf(tb testing.TB, reg *metadata.Registry, stmt ast.Statement) *metadata.Entity {
	tb.Helper()
	var name string
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		name = s.From.Entity
	case *ast.UpdateStatement:
		name = s.Entity
	case *ast.DeleteStatement:
		name = s.Entity
	}
	entity, ok := reg.Entity(name)
	require.True(tb, ok, "entity %q not registered", name)
	return entity
}

func generate(tb testing.TB, query string, d dialect.Dialect, opts ...sqlgen.Option) (*sqlgen.Result, error) {
	tb.Helper()
	reg := shopRegistry(tb)
	stmt, err := parser.Parse(query)
	require.NoError(tb, err)
	return sqlgen.Generate(stmt, primaryOf(tb, reg, stmt), reg, d, opts...)
}

func mustGenerate(tb testing.TB, query string, d dialect.Dialect, opts ...sqlgen.Option) *sqlgen.Result {
	tb.Helper()
	res, err := generate(tb, query, d, opts...)
	require.NoError(tb, err)
	return res
}

func TestGenerate_ExpandsEntitySelection(t *testing.T) {
	want := `SELECT o."id" AS "Id", o."total" AS "Total", o."status" AS "Status", o."created_at" AS "Created" FROM "orders" AS o WHERE o."total" > @min`

	// a bare alias, a bare star and a qualified star all select the whole
	// entity, column-aliased by property name
	for _, query := range []string{
		"SELECT o FROM Order o WHERE o.Total > :min",
		"SELECT * FROM Order o WHERE o.Total > :min",
		"SELECT o.* FROM Order o WHERE o.Total > :min",
	} {
		res := mustGenerate(t, query, dialect.Postgres)
		assert.Equal(t, want, res.SQL, "query: %s", query)
		assert.Equal(t, []string{"min"}, res.ParameterNames)
	}
}

func TestGenerate_DialectDivergence(t *testing.T) {
	const query = "SELECT o.Id FROM Order o WHERE o.Status = :status"

	tests := []struct {
		dialect dialect.Dialect
		want    string
	}{
		{dialect.MySQL, "SELECT o.`id` FROM `orders` AS o WHERE o.`status` = @status"},
		{dialect.Postgres, `SELECT o."id" FROM "orders" AS o WHERE o."status" = @status`},
		{dialect.SQLServer, "SELECT o.[id] FROM [orders] AS o WHERE o.[status] = @status"},
		{dialect.SQLite, `SELECT o."id" FROM "orders" AS o WHERE o."status" = @status`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			res := mustGenerate(t, query, tt.dialect)
			assert.Equal(t, tt.want, res.SQL)
			assert.Equal(t, []string{"status"}, res.ParameterNames)
		})
	}
}

func TestGenerate_UpdateLeavesColumnsUnqualified(t *testing.T) {
	for _, query := range []string{
		"UPDATE Order o SET o.Status = :next WHERE o.Id = :id",
		"UPDATE Order SET Status = :next WHERE Id = :id",
	} {
		res := mustGenerate(t, query, dialect.Postgres)
		assert.Equal(t, `UPDATE "orders" SET "status" = @next WHERE "id" = @id`, res.SQL, "query: %s", query)
		assert.Equal(t, []string{"next", "id"}, res.ParameterNames)
	}
}

func TestGenerate_UpdateMultipleAssignments(t *testing.T) {
	res := mustGenerate(t, "UPDATE Order o SET o.Status = 'paid', o.Total = o.Total + :fee WHERE o.Id = :id", dialect.MySQL)
	assert.Equal(t, "UPDATE `orders` SET `status` = 'paid', `total` = `total` + @fee WHERE `id` = @id", res.SQL)
	assert.Equal(t, []string{"fee", "id"}, res.ParameterNames)
}

func TestGenerate_Delete(t *testing.T) {
	res := mustGenerate(t, "DELETE FROM Order o WHERE o.Status = 'void'", dialect.Postgres)
	assert.Equal(t, `DELETE FROM "orders" WHERE "status" = 'void'`, res.SQL)
	assert.Equal(t, []string{}, res.ParameterNames)
}

func TestGenerate_ParameterOrderFollowsSQL(t *testing.T) {
	res := mustGenerate(t,
		"SELECT o.Id FROM Order o JOIN o.customer c ON c.Id = :cid WHERE o.Total > :min AND c.Id = :cid AND o.Status = :status",
		dialect.Postgres)

	assert.Equal(t,
		`SELECT o."id" FROM "orders" AS o JOIN "customers" AS c ON c."id" = @cid WHERE o."total" > @min AND c."id" = @cid AND o."status" = @status`,
		res.SQL)
	// the ON parameter appears in the SQL before the WHERE parameters, and
	// the repeated :cid is listed once
	assert.Equal(t, []string{"cid", "min", "status"}, res.ParameterNames)
}

func TestGenerate_PaginationPerDialect(t *testing.T) {
	const query = "SELECT o.Id FROM Order o ORDER BY o.Id"

	tests := []struct {
		name string
		d    dialect.Dialect
		opts []sqlgen.Option
		want string
	}{
		{
			name: "mysql limit and offset",
			d:    dialect.MySQL,
			opts: []sqlgen.Option{sqlgen.WithMaxRows(10), sqlgen.WithOffset(20)},
			want: "SELECT o.`id` FROM `orders` AS o ORDER BY o.`id` ASC LIMIT 10 OFFSET 20",
		},
		{
			name: "mysql offset without limit",
			d:    dialect.MySQL,
			opts: []sqlgen.Option{sqlgen.WithOffset(20)},
			want: "SELECT o.`id` FROM `orders` AS o ORDER BY o.`id` ASC LIMIT 18446744073709551615 OFFSET 20",
		},
		{
			name: "postgres limit and offset",
			d:    dialect.Postgres,
			opts: []sqlgen.Option{sqlgen.WithMaxRows(10), sqlgen.WithOffset(20)},
			want: `SELECT o."id" FROM "orders" AS o ORDER BY o."id" ASC LIMIT 10 OFFSET 20`,
		},
		{
			name: "postgres offset without limit",
			d:    dialect.Postgres,
			opts: []sqlgen.Option{sqlgen.WithOffset(20)},
			want: `SELECT o."id" FROM "orders" AS o ORDER BY o."id" ASC OFFSET 20`,
		},
		{
			name: "sqlite offset without limit",
			d:    dialect.SQLite,
			opts: []sqlgen.Option{sqlgen.WithOffset(20)},
			want: `SELECT o."id" FROM "orders" AS o ORDER BY o."id" ASC LIMIT -1 OFFSET 20`,
		},
		{
			name: "sqlserver top",
			d:    dialect.SQLServer,
			opts: []sqlgen.Option{sqlgen.WithMaxRows(10)},
			want: "SELECT TOP 10 o.[id] FROM [orders] AS o ORDER BY o.[id] ASC",
		},
		{
			name: "sqlserver offset fetch",
			d:    dialect.SQLServer,
			opts: []sqlgen.Option{sqlgen.WithMaxRows(10), sqlgen.WithOffset(20)},
			want: "SELECT o.[id] FROM [orders] AS o ORDER BY o.[id] ASC OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY",
		},
		{
			name: "sqlserver offset only",
			d:    dialect.SQLServer,
			opts: []sqlgen.Option{sqlgen.WithOffset(20)},
			want: "SELECT o.[id] FROM [orders] AS o ORDER BY o.[id] ASC OFFSET 20 ROWS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustGenerate(t, query, tt.d, tt.opts...)
			assert.Equal(t, tt.want, res.SQL)
		})
	}
}

func TestGenerate_SQLServerOffsetRequiresOrderBy(t *testing.T) {
	_, err := generate(t, "SELECT o.Id FROM Order o", dialect.SQLServer, sqlgen.WithOffset(5))
	require.Error(t, err)
	assert.True(t, sqlgen.IsKind(err, sqlgen.ErrUnsupported))
	assert.Contains(t, err.Error(), "ORDER BY")

	// the same pagination is fine where the dialect has a plain offset form
	res := mustGenerate(t, "SELECT o.Id FROM Order o", dialect.MySQL, sqlgen.WithOffset(5))
	assert.Equal(t, "SELECT o.`id` FROM `orders` AS o LIMIT 18446744073709551615 OFFSET 5", res.SQL)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		opts  []sqlgen.Option
		kind  sqlgen.ErrorKind
	}{
		{
			name:  "unresolved relationship",
			query: "SELECT x.Id FROM Order o JOIN o.vendor x",
			kind:  sqlgen.ErrUnresolvedRelationship,
		},
		{
			name:  "undeclared alias",
			query: "SELECT z.Id FROM Order o",
			kind:  sqlgen.ErrUnresolvedAlias,
		},
		{
			name:  "unknown property",
			query: "SELECT o.Shipped FROM Order o",
			kind:  sqlgen.ErrUnknownProperty,
		},
		{
			name:  "duplicate alias",
			query: "SELECT o.Id FROM Order o JOIN o.customer o",
			kind:  sqlgen.ErrDuplicateAlias,
		},
		{
			name:  "negative max rows",
			query: "SELECT o.Id FROM Order o",
			opts:  []sqlgen.Option{sqlgen.WithMaxRows(-5)},
			kind:  sqlgen.ErrUnsupported,
		},
		{
			name:  "row limit on update",
			query: "UPDATE Order SET Status = 'x'",
			opts:  []sqlgen.Option{sqlgen.WithMaxRows(1)},
			kind:  sqlgen.ErrUnsupported,
		},
		{
			name:  "row limit on delete",
			query: "DELETE FROM Order",
			opts:  []sqlgen.Option{sqlgen.WithOffset(3)},
			kind:  sqlgen.ErrUnsupported,
		},
		{
			name:  "wildcard outside projection",
			query: "SELECT o.Id FROM Order o WHERE o.* = 1",
			kind:  sqlgen.ErrUnsupported,
		},
		{
			name:  "aliased entity expansion",
			query: "SELECT o AS everything FROM Order o",
			kind:  sqlgen.ErrUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generate(t, tt.query, dialect.Postgres, tt.opts...)
			require.Error(t, err)
			genErr, ok := sqlgen.AsGenerationError(err)
			require.True(t, ok, "want *GenerationError, got %T", err)
			assert.Equal(t, tt.kind, genErr.Kind)
		})
	}
}

func TestGenerate_UnknownDialect(t *testing.T) {
	reg := shopRegistry(t)
	stmt, err := parser.Parse("SELECT o.Id FROM Order o")
	require.NoError(t, err)
	primary, _ := reg.Entity("Order")

	_, err = sqlgen.Generate(stmt, primary, reg, dialect.Dialect(0))
	assert.True(t, sqlgen.IsKind(err, sqlgen.ErrUnknownDialect))

	_, err = sqlgen.Generate(stmt, primary, reg, dialect.Dialect(99))
	assert.True(t, sqlgen.IsKind(err, sqlgen.ErrUnknownDialect))
}

func TestGenerate_UnknownJoinTarget(t *testing.T) {
	reg := shopRegistry(t)
	stmt, err := parser.Parse("SELECT c.Name FROM Order o JOIN o.customer c")
	require.NoError(t, err)
	primary, _ := reg.Entity("Order")

	// a nil lookup means no join target can resolve
	_, genErr := sqlgen.Generate(stmt, primary, nil, dialect.Postgres)
	assert.True(t, sqlgen.IsKind(genErr, sqlgen.ErrUnknownEntity))
}

func TestGenerate_EntityMismatch(t *testing.T) {
	reg := shopRegistry(t)
	stmt, err := parser.Parse("SELECT c.Name FROM Customer c")
	require.NoError(t, err)
	order, _ := reg.Entity("Order")

	_, genErr := sqlgen.Generate(stmt, order, reg, dialect.Postgres)
	assert.True(t, sqlgen.IsKind(genErr, sqlgen.ErrInvalidMetadata))
}

func TestGenerate_PredicateForms(t *testing.T) {
	tests := []struct {
		name   string
		where  string
		want   string
		params []string
	}{
		{
			name:   "between",
			where:  "o.Total BETWEEN :lo AND :hi",
			want:   `o."total" BETWEEN @lo AND @hi`,
			params: []string{"lo", "hi"},
		},
		{
			name:   "not between",
			where:  "o.Total NOT BETWEEN 1 AND 10",
			want:   `NOT (o."total" BETWEEN 1 AND 10)`,
			params: []string{},
		},
		{
			name:   "in list",
			where:  "o.Status IN ('new', 'paid')",
			want:   `o."status" IN ('new', 'paid')`,
			params: []string{},
		},
		{
			name:   "not in",
			where:  "o.Status NOT IN ('void')",
			want:   `NOT (o."status" IN ('void'))`,
			params: []string{},
		},
		{
			name:   "like",
			where:  "o.Status LIKE :pat",
			want:   `o."status" LIKE @pat`,
			params: []string{"pat"},
		},
		{
			name:   "is null",
			where:  "o.Status IS NULL",
			want:   `o."status" IS NULL`,
			params: []string{},
		},
		{
			name:   "is not null",
			where:  "o.Status IS NOT NULL",
			want:   `NOT (o."status" IS NULL)`,
			params: []string{},
		},
		{
			name:   "grouped boolean",
			where:  "NOT (o.Total > 5 OR o.Status = 'x')",
			want:   `NOT (o."total" > 5 OR o."status" = 'x')`,
			params: []string{},
		},
		{
			name:   "precedence over and",
			where:  "o.Status = 'a' OR o.Status = 'b' AND o.Total > 3",
			want:   `o."status" = 'a' OR o."status" = 'b' AND o."total" > 3`,
			params: []string{},
		},
		{
			name:   "escaped string literal",
			where:  "o.Status = 'it''s'",
			want:   `o."status" = 'it''s'`,
			params: []string{},
		},
		{
			name:   "boolean literals",
			where:  "o.Status = TRUE OR o.Status = FALSE",
			want:   `o."status" = 1 OR o."status" = 0`,
			params: []string{},
		},
		{
			name:   "arithmetic grouping",
			where:  "(o.Total + 1) * 2 > :x",
			want:   `(o."total" + 1) * 2 > @x`,
			params: []string{"x"},
		},
		{
			name:   "right associative grouping",
			where:  "o.Total - (1 - 2) = 3",
			want:   `o."total" - (1 - 2) = 3`,
			params: []string{},
		},
		{
			name:   "negative number",
			where:  "o.Total > -3",
			want:   `o."total" > -3`,
			params: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustGenerate(t, "SELECT o.Id FROM Order o WHERE "+tt.where, dialect.Postgres)
			assert.Equal(t, `SELECT o."id" FROM "orders" AS o WHERE `+tt.want, res.SQL)
			assert.Equal(t, tt.params, res.ParameterNames)
		})
	}
}

func TestGenerate_GroupHavingOrder(t *testing.T) {
	res := mustGenerate(t,
		"SELECT o.Status, COUNT(*), SUM(o.Total) FROM Order o GROUP BY o.Status HAVING COUNT(*) > :n ORDER BY SUM(o.Total) DESC",
		dialect.Postgres)

	assert.Equal(t,
		`SELECT o."status", COUNT(*), SUM(o."total") FROM "orders" AS o GROUP BY o."status" HAVING COUNT(*) > @n ORDER BY SUM(o."total") DESC`,
		res.SQL)
	assert.Equal(t, []string{"n"}, res.ParameterNames)
}

func TestGenerate_CountEntityUsesPrimaryKey(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT COUNT(o) FROM Order o", `SELECT COUNT(o."id") FROM "orders" AS o`},
		{"SELECT COUNT(o.*) FROM Order o", `SELECT COUNT(o."id") FROM "orders" AS o`},
		{"SELECT COUNT(*) FROM Order o", `SELECT COUNT(*) FROM "orders" AS o`},
		{"SELECT COUNT(DISTINCT c.Email) FROM Customer c", `SELECT COUNT(DISTINCT c."email") FROM "customers" AS c`},
	}
	for _, tt := range tests {
		res := mustGenerate(t, tt.query, dialect.Postgres)
		assert.Equal(t, tt.want, res.SQL, "query: %s", tt.query)
	}
}

func TestGenerate_SelectItemAliases(t *testing.T) {
	res := mustGenerate(t, "SELECT o.Total AS amount FROM Order o", dialect.Postgres)
	assert.Equal(t, `SELECT o."total" AS "amount" FROM "orders" AS o`, res.SQL)

	res = mustGenerate(t, "SELECT UPPER(c.Name) display FROM Customer c", dialect.Postgres)
	assert.Equal(t, `SELECT UPPER(c."name") AS "display" FROM "customers" AS c`, res.SQL)
}

func TestGenerate_FunctionsThroughDialect(t *testing.T) {
	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{dialect.MySQL, "SELECT LENGTH(c.`name`) FROM `customers` AS c"},
		{dialect.Postgres, `SELECT LENGTH(c."name") FROM "customers" AS c`},
		{dialect.SQLServer, "SELECT LEN(c.[name]) FROM [customers] AS c"},
		{dialect.SQLite, `SELECT LENGTH(c."name") FROM "customers" AS c`},
	}
	for _, tt := range tests {
		res := mustGenerate(t, "SELECT LENGTH(c.Name) FROM Customer c", tt.d)
		assert.Equal(t, tt.want, res.SQL, "dialect: %s", tt.d)
	}

	res := mustGenerate(t, "SELECT CONCAT(c.Name, '!') FROM Customer c", dialect.Postgres)
	assert.Equal(t, `SELECT (c."name" || '!') FROM "customers" AS c`, res.SQL)

	// names outside the portable set pass through untouched
	res = mustGenerate(t, "SELECT soundex(c.Name) FROM Customer c", dialect.SQLServer)
	assert.Equal(t, "SELECT soundex(c.[name]) FROM [customers] AS c", res.SQL)
}

func TestGenerate_DistinctProjection(t *testing.T) {
	res := mustGenerate(t, "SELECT DISTINCT o.Status FROM Order o", dialect.Postgres)
	assert.Equal(t, `SELECT DISTINCT o."status" FROM "orders" AS o`, res.SQL)
}

func TestGenerate_SchemaQualifiedTable(t *testing.T) {
	res := mustGenerate(t, "SELECT l.Id FROM Lead l WHERE l.Source = :src", dialect.Postgres)
	assert.Equal(t, `SELECT l."id" FROM "crm"."leads" AS l WHERE l."source" = @src`, res.SQL)

	res = mustGenerate(t, "SELECT l.Id FROM Lead l", dialect.MySQL)
	assert.Equal(t, "SELECT l.`id` FROM `crm`.`leads` AS l", res.SQL)
}

func TestGenerate_TimeLiteral(t *testing.T) {
	reg := shopRegistry(t)
	order, _ := reg.Entity("Order")
	stmt := &ast.UpdateStatement{
		Entity: "Order",
		Alias:  "o",
		Sets: []ast.Assignment{{
			Property: "Created",
			Value:    &ast.LiteralExpr{Value: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		}},
	}

	res, err := sqlgen.Generate(stmt, order, reg, dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "orders" SET "created_at" = '2024-05-01 10:30:00'`, res.SQL)
}

func TestGenerate_ParameterNamesNeverNil(t *testing.T) {
	res := mustGenerate(t, "SELECT o.Id FROM Order o", dialect.Postgres)
	assert.NotNil(t, res.ParameterNames)
	assert.Empty(t, res.ParameterNames)
}
