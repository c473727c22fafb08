package item_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

func genItems() gopter.Gen {
	return gen.SliceOf(gen.Struct(reflect.TypeOf(item.Item{}), map[string]gopter.Gen{
		"Name":     gen.PtrOf(gen.AlphaString()),
		"Category": gen.PtrOf(gen.OneConstOf("Electronics", "Furniture", "furniture", "Books")),
		"Price":    gen.PtrOf(gen.Float64Range(0, 5000)),
	})).Map(func(items []item.Item) []item.Item {
		for i := range items {
			items[i].ID = int64(i + 1)
		}
		return items
	})
}

// Property: concatenating every page in order yields exactly the filtered set.
func TestQueryPagesPartitionResult(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("pages partition the filtered result", prop.ForAll(
		func(items []item.Item, limit int) bool {
			p := item.DefaultParams()
			p.Limit = limit
			p.SortBy = "price"

			first := item.Query(items, p)
			var seen []int64
			for page := 1; page <= first.Pagination.TotalPages; page++ {
				p.Page = page
				res := item.Query(items, p)
				if len(res.Data) > limit {
					return false
				}
				for _, it := range res.Data {
					seen = append(seen, it.ID)
				}
			}
			if len(seen) != first.Pagination.TotalItems {
				return false
			}
			dup := map[int64]bool{}
			for _, id := range seen {
				if dup[id] {
					return false
				}
				dup[id] = true
			}
			return true
		},
		genItems(),
		gen.IntRange(1, 25),
	))

	properties.TestingRun(t)
}

// Property: a page holds min(limit, remaining) items, and pages past the end
// are empty however large the page number is.
func TestQueryPageSizeForAnyPage(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("page length matches the remaining items", prop.ForAll(
		func(items []item.Item, page, limit int) bool {
			p := item.DefaultParams()
			p.Page, p.Limit = page, limit

			res := item.Query(items, p)
			total := res.Pagination.TotalItems
			want := 0
			if page-1 <= total/limit {
				want = min(limit, total-(page-1)*limit)
			}
			return res.Data != nil && len(res.Data) == want
		},
		genItems(),
		gen.OneGenOf(
			gen.IntRange(1, 50),
			gen.IntRange(math.MaxInt/2, math.MaxInt),
		),
		gen.IntRange(1, 25),
	))

	properties.TestingRun(t)
}

// Property: every returned item satisfies the text, category and price filters.
func TestQueryResultsMatchFilters(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("results satisfy every filter", prop.ForAll(
		func(items []item.Item, q, category string, lo, hi float64) bool {
			p := item.DefaultParams()
			p.Q, p.Category = q, category
			p.MinPrice, p.MaxPrice = &lo, &hi
			p.Limit = len(items) + 1

			res := item.Query(items, p)
			for _, it := range res.Data {
				name, cat := deref(it.Name), deref(it.Category)
				lq := strings.ToLower(q)
				if lq != "" && !strings.Contains(strings.ToLower(name), lq) && !strings.Contains(strings.ToLower(cat), lq) {
					return false
				}
				if category != "" && !strings.EqualFold(cat, category) {
					return false
				}
				if it.Price == nil || *it.Price < lo || *it.Price > hi {
					return false
				}
			}
			return true
		},
		genItems(),
		gen.OneConstOf("", "a", "e", "ur"),
		gen.OneConstOf("", "furniture", "Books"),
		gen.Float64Range(0, 2500),
		gen.Float64Range(2500, 5000),
	))

	properties.TestingRun(t)
}

// Property: sorting desc reverses the price order of asc for distinct prices.
func TestQuerySortOrderIsMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("price sort is monotonic", prop.ForAll(
		func(items []item.Item, desc bool) bool {
			p := item.DefaultParams()
			p.SortBy = "price"
			p.Limit = len(items) + 1
			if desc {
				p.SortOrder = item.SortDesc
			}
			res := item.Query(items, p)
			for i := 1; i < len(res.Data); i++ {
				a, b := res.Data[i-1].Price, res.Data[i].Price
				if a == nil || b == nil {
					continue
				}
				if desc && *a < *b || !desc && *a > *b {
					return false
				}
			}
			return true
		},
		genItems(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
