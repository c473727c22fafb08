package item

import (
	"cmp"
	"errors"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 10
	DefaultSortBy = "id"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Variant selects which filters a query applies. Basic is the list endpoint
// (text and category); Advanced is the search endpoint, which adds price bounds.
type Variant int

const (
	Basic Variant = iota
	Advanced
)

type Params struct {
	Q        string
	Category string
	// Only honored by the Advanced variant.
	MinPrice *float64
	MaxPrice *float64

	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// DefaultParams is the query the list endpoint runs when no parameters are given.
func DefaultParams() Params {
	return Params{SortBy: DefaultSortBy, SortOrder: SortAsc, Page: DefaultPage, Limit: DefaultLimit}
}

// ParseParams resolves raw query-string values into Params. page and limit are
// read with LeadingInt ("2abc" is 2); when no digits lead they fall back to
// their defaults. Zero and negative values are kept as given. Unparsable
// price bounds are treated as absent.
func ParseParams(v url.Values, variant Variant) Params {
	p := DefaultParams()
	p.Q = v.Get("q")
	p.Category = v.Get("category")
	if s := strings.TrimSpace(v.Get("sortBy")); s != "" {
		p.SortBy = s
	}
	if strings.EqualFold(strings.TrimSpace(v.Get("sortOrder")), SortDesc) {
		p.SortOrder = SortDesc
	}
	if n, ok := LeadingInt(v.Get("page")); ok {
		p.Page = toInt(n)
	}
	if n, ok := LeadingInt(v.Get("limit")); ok {
		p.Limit = toInt(n)
	}
	if variant == Advanced {
		p.MinPrice = parseBound(v.Get("minPrice"))
		p.MaxPrice = parseBound(v.Get("maxPrice"))
	}
	return p
}

// Values encodes p as query-string values that ParseParams reads back
// unchanged. Price bounds are only written for the Advanced variant.
func (p Params) Values(variant Variant) url.Values {
	v := url.Values{}
	if p.Q != "" {
		v.Set("q", p.Q)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		v.Set("sortOrder", p.SortOrder)
	}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	if variant == Advanced {
		if p.MinPrice != nil {
			v.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
		}
		if p.MaxPrice != nil {
			v.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
		}
	}
	return v
}

// LeadingInt reads an optional sign and the decimal digits after it, ignoring
// surrounding whitespace and anything past the digits ("12abc" is 12). Values
// outside the int64 range saturate.
func LeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

func toInt(n int64) int {
	return int(max(min(n, math.MaxInt), math.MinInt))
}

func parseBound(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// Query runs the pipeline: text filter, category filter, price range, count,
// stable sort, then pagination. The input slice is not modified.
func Query(items []Item, p Params) ListResponse {
	q := strings.ToLower(strings.TrimSpace(p.Q))
	category := strings.ToLower(strings.TrimSpace(p.Category))

	filtered := make([]Item, 0, len(items))
	for _, it := range items {
		if q != "" &&
			!strings.Contains(strings.ToLower(it.name()), q) &&
			!strings.Contains(strings.ToLower(it.category()), q) {
			continue
		}
		if category != "" && strings.ToLower(it.category()) != category {
			continue
		}
		if !inPriceRange(it, p.MinPrice, p.MaxPrice) {
			continue
		}
		filtered = append(filtered, it)
	}

	total := len(filtered)
	totalPages := 0
	if p.Limit != 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}

	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	desc := p.SortOrder == SortDesc
	slices.SortStableFunc(filtered, func(a, b Item) int {
		c := compareValues(a.Field(sortBy), b.Field(sortBy))
		if desc {
			return -c
		}
		return c
	})

	start, end := pageWindow(p.Page, p.Limit)
	page := jsSlice(filtered, start, end)

	order := SortAsc
	if desc {
		order = SortDesc
	}
	return ListResponse{
		Data: page,
		Pagination: Pagination{
			CurrentPage:  p.Page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: p.Limit,
			HasNextPage:  p.Page < totalPages,
			HasPrevPage:  p.Page > 1,
		},
		Filters: Filters{
			Q:         strings.TrimSpace(p.Q),
			Category:  strings.TrimSpace(p.Category),
			MinPrice:  p.MinPrice,
			MaxPrice:  p.MaxPrice,
			SortBy:    sortBy,
			SortOrder: order,
		},
	}
}

// inPriceRange drops items without a numeric price once any bound is set.
func inPriceRange(it Item, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if it.Price == nil {
		return false
	}
	if lo != nil && *it.Price < *lo {
		return false
	}
	if hi != nil && *it.Price > *hi {
		return false
	}
	return true
}

// pageWindow returns the slice bounds of a page. The arithmetic runs in
// float64 and saturates, so a huge page lands past the end instead of
// wrapping around onto real rows.
func pageWindow(page, limit int) (start, end int) {
	from := (float64(page) - 1) * float64(limit)
	return saturate(from), saturate(from + float64(limit))
}

func saturate(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// jsSlice mirrors Array.prototype.slice: negative indices count from the end
// and an end before start yields an empty slice. A negative limit therefore
// trims items off the tail instead of failing.
func jsSlice[T any](s []T, start, end int) []T {
	n := len(s)
	clamp := func(i int) int {
		if i < 0 {
			return max(n+i, 0)
		}
		return min(i, n)
	}
	start, end = clamp(start), clamp(end)
	if end <= start {
		return []T{}
	}
	out := make([]T, end-start)
	copy(out, s[start:end])
	return out
}

// compareValues orders sort keys: missing < bool < number < string < anything
// else. Strings compare case-folded.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return strings.Compare(strings.ToLower(av), strings.ToLower(b.(string)))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// Categories returns the distinct category values, compared case-sensitively,
// in ascending order. Items without a category are skipped.
func Categories(items []Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		if it.Category == nil {
			continue
		}
		if _, ok := seen[*it.Category]; ok {
			continue
		}
		seen[*it.Category] = struct{}{}
		out = append(out, *it.Category)
	}
	slices.Sort(out)
	return out
}
