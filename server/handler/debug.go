package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"

	"pkg.world.dev/world-engine/nucleus/cql"
	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/ecs/filter"
	"pkg.world.dev/world-engine/nucleus/tag"
)

type SearchResponse struct {
	Query   string        `json:"query"`
	Results []EntityState `json:"results"`
}

// GetWorld godoc
//
//	@Summary		Describe the registered systems, entities and event subscriptions
//	@Produce		application/json
//	@Success		200	{object}	ecs.Summary
//	@Router			/debug/world [get]
func GetWorld[C any](provider Provider[C]) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		var summary ecs.Summary
		provider.View(func(w *ecs.World[C]) {
			summary = w.Summary()
		})
		return ctx.JSON(summary)
	}
}

// GetEntity godoc
//
//	@Summary		Get the components of an entity
//	@Produce		application/json
//	@Param			id	path		string	true	"entity id"
//	@Success		200	{object}	EntityState
//	@Router			/debug/entities/{id} [get]
func GetEntity[C any](provider Provider[C], names Names) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		id := ecs.EntityID(ctx.Params("id"))
		var (
			state EntityState
			found bool
			err   error
		)
		provider.View(func(w *ecs.World[C]) {
			var e *ecs.Entity
			if e, found = w.Entity(id); found {
				state, err = entityState(names, e)
			}
		})
		if !found {
			return eris.Wrapf(ecs.ErrUnknownEntity, "entity %q", id)
		}
		if err != nil {
			return err
		}
		return ctx.JSON(state)
	}
}

// GetSearch godoc
//
//	@Summary		Search entities with a trait query, e.g. CONTAINS(Camera) & !EXACT(Transform)
//	@Produce		application/json
//	@Param			cql	query		string	true	"trait query"
//	@Success		200	{object}	SearchResponse
//	@Router			/debug/search [get]
func GetSearch[C any](provider Provider[C], names Names) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		query := ctx.Query("cql")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing cql query parameter")
		}
		f, err := cql.Parse(query, names.Lookup)
		if eris.Is(err, tag.ErrUnknownName) {
			return err
		} else if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, err := search(provider, names, f)
		if err != nil {
			return err
		}
		normalized, err := cql.Normalize(query)
		if err != nil {
			normalized = query
		}
		return ctx.JSON(SearchResponse{Query: normalized, Results: res})
	}
}

func search[C any](provider Provider[C], names Names, f filter.ComponentFilter) ([]EntityState, error) {
	results := make([]EntityState, 0)
	var err error
	provider.View(func(w *ecs.World[C]) {
		for _, e := range w.Search(f) {
			var state EntityState
			if state, err = entityState(names, e); err != nil {
				return
			}
			results = append(results, state)
		}
	})
	return results, err
}
