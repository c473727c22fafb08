package main

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/catalog-browser/internal/httpx"
	"github.com/MikeMC777/catalog-browser/internal/item"
	"github.com/MikeMC777/catalog-browser/internal/metrics"
)

const msgInvalidBody = "invalid JSON body"

// listItemsHandler godoc
// @Summary      List items
// @Description  Text and category filter, sort and pagination over the whole catalog.
// @Tags         items
// @Produce      json
// @Param        q          query  string  false  "substring of name or category, case-insensitive"
// @Param        category   query  string  false  "exact category, case-insensitive"
// @Param        sortBy     query  string  false  "field to sort by"  default(id)
// @Param        sortOrder  query  string  false  "asc or desc"       default(asc)
// @Param        page       query  int     false  "1-based page"      default(1)
// @Param        limit      query  int     false  "page size"         default(10)
// @Success      200  {object}  item.ListResponse
// @Failure      500  {object}  item.ServerError
// @Router       /api/items [get]
func listItemsHandler(repo item.Repository) gin.HandlerFunc {
	return queryHandler(repo, item.Basic)
}

// searchItemsHandler godoc
// @Summary      Search items
// @Description  Same as the list endpoint plus inclusive price bounds.
// @Tags         items
// @Produce      json
// @Param        q          query  string  false  "substring of name or category, case-insensitive"
// @Param        category   query  string  false  "exact category, case-insensitive"
// @Param        minPrice   query  number  false  "lower price bound"
// @Param        maxPrice   query  number  false  "upper price bound"
// @Param        sortBy     query  string  false  "field to sort by"  default(id)
// @Param        sortOrder  query  string  false  "asc or desc"       default(asc)
// @Param        page       query  int     false  "1-based page"      default(1)
// @Param        limit      query  int     false  "page size"         default(10)
// @Success      200  {object}  item.ListResponse
// @Failure      500  {object}  item.ServerError
// @Router       /api/items/search [get]
func searchItemsHandler(repo item.Repository) gin.HandlerFunc {
	return queryHandler(repo, item.Advanced)
}

func queryHandler(repo item.Repository, v item.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.LoadAll(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item.Query(items, item.ParseParams(c.Request.URL.Query(), v)))
	}
}

// categoriesHandler godoc
// @Summary      List categories
// @Tags         items
// @Produce      json
// @Success      200  {object}  item.CategoriesResponse
// @Failure      500  {object}  item.ServerError
// @Router       /api/items/categories [get]
func categoriesHandler(repo item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.LoadAll(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item.CategoriesResponse{Categories: item.Categories(items)})
	}
}

// getItemHandler godoc
// @Summary      Get an item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "item id"
// @Success      200  {object}  item.Item
// @Failure      404  {object}  item.HTTPError
// @Failure      500  {object}  item.ServerError
// @Router       /api/items/{id} [get]
func getItemHandler(repo item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c.Param("id"))
		if !ok {
			httpx.Fail(c, item.ErrNotFound)
			return
		}
		it, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// createItemHandler godoc
// @Summary      Create an item
// @Description  Any JSON object is accepted. The id is assigned by the server.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        item  body      item.Item  true  "item fields"
// @Success      201   {object}  item.Item
// @Failure      400   {object}  item.HTTPError
// @Failure      500   {object}  item.ServerError
// @Router       /api/items [post]
func createItemHandler(repo item.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, item.HTTPError{Error: msgInvalidBody})
			return
		}
		var in item.Item
		if err := json.Unmarshal(body, &in); err != nil {
			c.JSON(http.StatusBadRequest, item.HTTPError{Error: msgInvalidBody})
			return
		}
		created, err := repo.Append(c.Request.Context(), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		metrics.RecordItemCreated()
		c.JSON(http.StatusCreated, created)
	}
}

// statsHandler godoc
// @Summary      Catalog statistics
// @Description  Item count and average price. averagePrice is null for an empty catalog.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  item.Stats
// @Failure      500  {object}  item.ServerError
// @Router       /api/stats [get]
func statsHandler(cache *item.StatsCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := cache.Get(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// parseID reads the id path segment with the same leading-integer rule as
// page and limit.
func parseID(s string) (int64, bool) {
	return item.LeadingInt(s)
}
