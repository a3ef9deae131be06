package postgres

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

// Параметры пагинации поиска.
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

type columnKind int

const (
	kindText columnKind = iota
	kindNumber
	kindInteger
	kindBool
	kindTime
)

// searchable — белый список колонок, доступных для фильтров и сортировки.
// Имена колонок никогда не берутся из запроса напрямую.
var searchable = map[string]columnKind{
	"name":                       kindText,
	"x":                          kindNumber,
	"y":                          kindNumber,
	"type":                       kindText,
	"owner_name":                 kindText,
	"property_form":              kindText,
	"length":                     kindNumber,
	"width":                      kindNumber,
	"area":                       kindNumber,
	"actual_workload":            kindInteger,
	"annual_capacity":            kindInteger,
	"notes":                      kindText,
	"height":                     kindNumber,
	"size":                       kindNumber,
	"depth":                      kindNumber,
	"converting_type":            kindText,
	"is_accessible_for_disabled": kindBool,
	"paying_type":                kindText,
	"who_can_use":                kindText,
	"link":                       kindText,
	"phone_number":               kindText,
	"open_hours":                 kindText,
	"eps":                        kindInteger,
	"hidden":                     kindBool,
	"created_at":                 kindTime,
	"updated_at":                 kindTime,
}

// likeEscaper экранирует метасимволы LIKE в подстроке поиска.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearch собирает параметризованный SELECT для поиска объектов.
//
// Поведение:
//   - q: подстрока имени без учёта регистра;
//   - внутри одного фильтра eq/lt/gt объединяются через AND, lt означает <=,
//     gt означает >=; отсутствующие (nil) операнды пропускаются;
//   - разные фильтры объединяются через AND;
//   - order_by из белого списка, при равенстве по id для стабильности;
//   - limit: 0 - DefaultSearchLimit, больше MaxSearchLimit - MaxSearchLimit;
//   - неизвестное поле, несовместимый тип значения или отрицательные
//     limit/offset - storage.ErrInvalidQuery.
func buildSearch(s models.FacilitySearch) (string, []any, error) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(s.Query); q != "" {
		where = append(where, fmt.Sprintf(`name ILIKE '%%' || %s || '%%'`, arg(likeEscaper.Replace(q))))
	}

	for i, f := range s.Filters {
		kind, ok := searchable[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: filter %d: unknown field %q", storage.ErrInvalidQuery, i, f.Field)
		}

		ops := []struct {
			sql string
			val any
		}{
			{"=", f.Eq},
			{"<=", f.Lt},
			{">=", f.Gt},
		}

		var conds []string
		for _, o := range ops {
			if o.val == nil {
				continue
			}

			v, err := coerce(kind, o.sql, o.val)
			if err != nil {
				return "", nil, fmt.Errorf("%w: filter %d (%s): %v", storage.ErrInvalidQuery, i, f.Field, err)
			}

			conds = append(conds, fmt.Sprintf("%s %s %s", f.Field, o.sql, arg(v)))
		}

		if len(conds) == 0 {
			return "", nil, fmt.Errorf("%w: filter %d (%s): no operand", storage.ErrInvalidQuery, i, f.Field)
		}

		where = append(where, "("+strings.Join(conds, " AND ")+")")
	}

	if s.Limit < 0 || s.Offset < 0 {
		return "", nil, fmt.Errorf("%w: negative limit or offset", storage.ErrInvalidQuery)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(facilityColumns)
	b.WriteString(" FROM facilities")

	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	order := "created_at"
	if s.OrderBy != "" {
		if _, ok := searchable[s.OrderBy]; !ok {
			return "", nil, fmt.Errorf("%w: unknown order_by %q", storage.ErrInvalidQuery, s.OrderBy)
		}
		order = s.OrderBy
	}

	dir := "ASC"
	if s.OrderDesc {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", order, dir, dir)

	limit := s.Limit
	switch {
	case limit == 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	fmt.Fprintf(&b, " LIMIT %s OFFSET %s", arg(limit), arg(s.Offset))

	return b.String(), args, nil
}

// coerce проверяет, что значение фильтра совместимо с типом колонки.
// JSON-числа приходят как float64.
func coerce(kind columnKind, op string, v any) (any, error) {
	switch kind {
	case kindNumber:
		if n, ok := v.(float64); ok {
			return n, nil
		}
		return nil, fmt.Errorf("expected number, got %T", v)
	case kindInteger:
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return nil, fmt.Errorf("expected integer, got %v", n)
		}
		return int64(n), nil
	case kindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", v)
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		if op != "=" {
			return nil, fmt.Errorf("bool supports only eq")
		}
		return b, nil
	case kindTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected RFC 3339 string, got %T", v)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("expected RFC 3339 string, got %q", s)
		}
		return t, nil
	}

	return nil, fmt.Errorf("unsupported column")
}
