package api

import (
	"math"
	"strconv"

	"github.com/MySpectacularBalls/windows-image-explorer/internal/config"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/model"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/search"
	"github.com/MySpectacularBalls/windows-image-explorer/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// RegisterQueryRoutes 注册 /api/query 下的搜索与历史接口
func RegisterQueryRoutes(app fiber.Router, engine *search.Engine, st *store.Store, cfg *config.Config) {
	group := app.Group("/api/query")

	group.Get("/", queryObjectsHandler(engine, st, cfg))
	group.Get("/queries", listQueriesHandler(st))
	group.Get("/results", queryResultsHandler(engine, st))
}

// queryObjectsHandler 相似度搜索
func queryObjectsHandler(engine *search.Engine, st *store.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("query")
		if query == "" || len(query) > 1024 {
			return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
				"query": "must be a non-empty string of at most 1024 characters",
			})
		}

		nResults := cfg.Query.DefaultNResults
		if val := c.Query("n_results"); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > cfg.Query.MaxNResults {
				return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
					"n_results": "must be an integer between 1 and " + strconv.Itoa(cfg.Query.MaxNResults),
				})
			}
			nResults = n
		}

		var maxDistance *float64
		if val := c.Query("max_distance"); val != "" {
			d, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
					"max_distance": "must be a number",
				})
			}
			maxDistance = &d
		}

		results, _, err := engine.Query(c.Context(), query, nResults, maxDistance)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(Response{
				StatusCode:   fiber.StatusInternalServerError,
				ErrorMessage: err.Error(),
			})
		}

		return respond(c, map[string]interface{}{
			"results": resultsPayload(st, results),
		})
	}
}

// listQueriesHandler 分页列出已保存的查询
func listQueriesHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		pageSize := c.QueryInt("page_size", 25)
		if page < 1 || pageSize < 1 || pageSize > 255 {
			return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
				"page": "page must be >= 1 and page_size between 1 and 255",
			})
		}

		sortBy := c.Query("sort_by", "created_at")
		if sortBy != "created_at" && sortBy != "results" {
			return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
				"sort_by": "must be one of: created_at, results",
			})
		}
		sortDirection := c.Query("sort_direction", "descending")
		if sortDirection != "descending" && sortDirection != "ascending" {
			return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
				"sort_direction": "must be one of: descending, ascending",
			})
		}

		queries, count, err := st.ListQueries(page, pageSize, sortBy, sortDirection)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(Response{
				StatusCode:   fiber.StatusInternalServerError,
				ErrorMessage: err.Error(),
			})
		}

		return respond(c, map[string]interface{}{
			"results": lo.Map(queries, func(q model.Query, _ int) map[string]interface{} {
				return q.ToJSON()
			}),
			"page":      page,
			"page_size": pageSize,
			"pages":     int(math.Ceil(float64(count) / float64(pageSize))),
		})
	}
}

// queryResultsHandler 读取已保存查询的持久化结果
func queryResultsHandler(engine *search.Engine, st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Query("id")
		if id == "" {
			return respondError(c, ErrCodeInvalidParams, map[string]interface{}{
				"id": "a saved query id is required",
			})
		}

		q, results, err := engine.SavedResults(id)
		if err != nil {
			if err == search.ErrQueryNotFound {
				return respondError(c, ErrCodeQueryNotFound, nil)
			}
			return c.Status(fiber.StatusInternalServerError).JSON(Response{
				StatusCode:   fiber.StatusInternalServerError,
				ErrorMessage: err.Error(),
			})
		}

		return respond(c, map[string]interface{}{
			"query":   q.ToJSON(),
			"results": resultsPayload(st, results),
		})
	}
}

// resultsPayload 命中对象带上定义与距离
func resultsPayload(st *store.Store, results []search.Result) []map[string]interface{} {
	return lo.Map(results, func(r search.Result, _ int) map[string]interface{} {
		payload := r.Object.ToJSON()

		definitions, err := st.DefinitionsFor(r.Object.ID)
		if err == nil {
			payload["definitions"] = lo.Map(definitions, func(d model.ObjectDefinition, _ int) map[string]interface{} {
				return d.ToJSON()
			})
		}

		payload["distance"] = r.Distance
		return payload
	})
}
