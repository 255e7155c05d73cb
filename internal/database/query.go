package database

import (
	"fmt"
	"strings"

	"github.com/TemirB/jewelry-pricing/internal/domain"
)

const productColumns = `p.id, p.vendor_id, p.name, COALESCE(p.description, ''), p.weight, p.popularity_score, p.created_at`

// Price is computed at read time, so it has no column here and falls back
// to creation order.
var sortColumns = map[domain.SortKey]string{
	domain.SortCreatedAt:  "p.created_at",
	domain.SortName:       "p.name",
	domain.SortPopularity: "p.popularity_score",
	domain.SortWeight:     "p.weight",
}

type query struct {
	sql  string
	args []any
}

func qualify(schema, tbl string) string { return fmt.Sprintf(`"%s"."%s"`, schema, tbl) }

// listQuery selects the products matching f. A limit below 1 selects the
// whole matching set.
func listQuery(schema string, f domain.CatalogFilter, limit, offset int) query {
	where, args := whereClause(schema, f)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s p%s ORDER BY %s", productColumns, qualify(schema, "products"), where, orderClause(f))
	if limit > 0 {
		args = append(args, limit, offset)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return query{sql: b.String(), args: args}
}

func countQuery(schema string, f domain.CatalogFilter) query {
	where, args := whereClause(schema, f)
	return query{
		sql:  fmt.Sprintf("SELECT count(*) FROM %s p%s", qualify(schema, "products"), where),
		args: args,
	}
}

func whereClause(schema string, f domain.CatalogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.VendorID != nil {
		add("p.vendor_id = $%d", *f.VendorID)
	}
	if f.GoldColor != "" {
		add("EXISTS (SELECT 1 FROM "+qualify(schema, "product_variants")+" v WHERE v.product_id = p.id AND v.color = $%d)", string(f.GoldColor))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add(`p.name ILIKE $%d ESCAPE '\'`, "%"+escapeLike(s)+"%")
	}
	if f.MinWeight != nil {
		add("p.weight >= $%d", *f.MinWeight)
	}
	if f.MaxWeight != nil {
		add("p.weight <= $%d", *f.MaxWeight)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(f domain.CatalogFilter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns[domain.SortCreatedAt]
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	// id keeps page boundaries stable between equal keys
	return fmt.Sprintf("%s %s, p.id %s", col, dir, dir)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
