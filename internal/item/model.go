package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"sort"
)

// Item is a catalog record. Only id is assigned by the server; every other
// field is optional and stored as received. Keys the server does not know about
// are kept in Extra so a stored object survives a load/save round trip intact.
type Item struct {
	ID          int64
	Name        *string
	Category    *string
	Price       *float64
	CreatedAt   *string
	Description *string
	Tags        []string

	Extra map[string]json.RawMessage
}

var errNotObject = errors.New("item is not a JSON object")

// UnmarshalJSON accepts any JSON object. A known key whose value does not fit
// the typed field is kept verbatim in Extra instead of failing the decode.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errNotObject
	}

	*it = Item{}
	for key, val := range raw {
		var ok bool
		isNull := bytes.Equal(bytes.TrimSpace(val), []byte("null"))
		switch key {
		case "id":
			ok = json.Unmarshal(val, &it.ID) == nil
		case "name":
			ok = json.Unmarshal(val, &it.Name) == nil
		case "category":
			ok = json.Unmarshal(val, &it.Category) == nil
		case "price":
			ok = json.Unmarshal(val, &it.Price) == nil
		// an explicit null on an optional key must survive, so it goes to Extra
		case "createdAt":
			ok = !isNull && json.Unmarshal(val, &it.CreatedAt) == nil
		case "description":
			ok = !isNull && json.Unmarshal(val, &it.Description) == nil
		case "tags":
			ok = !isNull && json.Unmarshal(val, &it.Tags) == nil
		}
		if !ok {
			if it.Extra == nil {
				it.Extra = make(map[string]json.RawMessage)
			}
			it.Extra[key] = val
		}
	}
	return nil
}

// MarshalJSON writes id, name, category and price always (null when unset),
// the optional fields only when present, then Extra in key order.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	fields := []struct {
		key  string
		val  any
		keep bool
	}{
		{"id", it.ID, true},
		{"name", it.Name, it.Extra["name"] == nil},
		{"category", it.Category, it.Extra["category"] == nil},
		{"price", it.Price, it.Extra["price"] == nil},
		{"createdAt", it.CreatedAt, it.CreatedAt != nil},
		{"description", it.Description, it.Description != nil},
		{"tags", it.Tags, it.Tags != nil},
	}
	for _, f := range fields {
		if !f.keep {
			continue
		}
		if err := write(f.key, f.val); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(it.Extra))
	for k := range it.Extra {
		if k == "id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, it.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Field returns the value stored under a JSON key, used for sorting by an
// arbitrary field. Missing keys yield nil.
func (it Item) Field(key string) any {
	switch key {
	case "id":
		return float64(it.ID)
	case "name":
		if it.Name != nil {
			return *it.Name
		}
	case "category":
		if it.Category != nil {
			return *it.Category
		}
	case "price":
		if it.Price != nil {
			return *it.Price
		}
	case "createdAt":
		if it.CreatedAt != nil {
			return *it.CreatedAt
		}
	case "description":
		if it.Description != nil {
			return *it.Description
		}
	case "tags":
		if it.Tags != nil {
			return it.Tags
		}
	}
	raw, ok := it.Extra[key]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func (it Item) name() string {
	if it.Name == nil {
		return ""
	}
	return *it.Name
}

func (it Item) category() string {
	if it.Category == nil {
		return ""
	}
	return *it.Category
}

// Stats is the aggregate served by /api/stats.
type Stats struct {
	Total int `json:"total"`
	// NaN when Total is 0; encoded as null.
	AveragePrice float64 `json:"averagePrice"`
}

func (s Stats) MarshalJSON() ([]byte, error) {
	var avg *float64
	if !math.IsNaN(s.AveragePrice) && !math.IsInf(s.AveragePrice, 0) {
		avg = &s.AveragePrice
	}
	return json.Marshal(struct {
		Total        int      `json:"total"`
		AveragePrice *float64 `json:"averagePrice"`
	}{s.Total, avg})
}

func (s *Stats) UnmarshalJSON(data []byte) error {
	var aux struct {
		Total        int      `json:"total"`
		AveragePrice *float64 `json:"averagePrice"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Total = aux.Total
	s.AveragePrice = math.NaN()
	if aux.AveragePrice != nil {
		s.AveragePrice = *aux.AveragePrice
	}
	return nil
}

// Pagination describes where a page sits within the filtered result set.
// swagger:model
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// Filters echoes the resolved query that produced a page.
// swagger:model
type Filters struct {
	Q         string   `json:"q"`
	Category  string   `json:"category"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	SortBy    string   `json:"sortBy"`
	SortOrder string   `json:"sortOrder"`
}

// ListResponse is the paginated response of the list and search endpoints.
// swagger:model
type ListResponse struct {
	Data       []Item     `json:"data"`
	Pagination Pagination `json:"pagination"`
	Filters    Filters    `json:"filters"`
}

// CategoriesResponse lists the distinct categories.
// swagger:model
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: Item not found
	Error string `json:"error"`
}

// ServerError is the body of a 500 response. Stack is only set in development.
// swagger:model
type ServerError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}
