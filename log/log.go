package log

import (
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/ecs"
)

type Loggable interface {
	Summary() ecs.Summary
}

func loadTraitsIntoArray(traits []ecs.ComponentID) *zerolog.Array {
	arrayLogger := zerolog.Arr()
	for _, t := range traits {
		arrayLogger = arrayLogger.Str(t.String())
	}
	return arrayLogger
}

func loadSystemsToEvent(zeroLoggerEvent *zerolog.Event, systems []ecs.SystemSummary) *zerolog.Event {
	zeroLoggerEvent.Int("total_systems", len(systems))
	arrayLogger := zerolog.Arr()
	for _, s := range systems {
		dictLogger := zerolog.Dict().
			Str("system_name", s.Name).
			Int("priority", int(s.Priority)).
			Array("traits", loadTraitsIntoArray(s.Traits)).
			Int("matched", len(s.Matched))
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	return zeroLoggerEvent.Array("systems", arrayLogger)
}

func loadEntitiesToEvent(zeroLoggerEvent *zerolog.Event, entities []ecs.EntitySummary) *zerolog.Event {
	zeroLoggerEvent.Int("total_entities", len(entities))
	arrayLogger := zerolog.Arr()
	for _, e := range entities {
		dictLogger := zerolog.Dict().
			Str("entity_id", string(e.ID)).
			Array("traits", loadTraitsIntoArray(e.Traits))
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	return zeroLoggerEvent.Array("entities", arrayLogger)
}

func loadEventsToEvent(zeroLoggerEvent *zerolog.Event, events []ecs.EventSummary) *zerolog.Event {
	dictLogger := zerolog.Dict()
	for _, e := range events {
		dictLogger = dictLogger.Int(string(e.Kind), e.Subscribers)
	}
	return zeroLoggerEvent.Dict("event_subscribers", dictLogger)
}

// Systems logs all system info related to the world.
func Systems(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadSystemsToEvent(zeroLoggerEvent, target.Summary().Systems).Send()
}

// Entities logs every registered entity along with its traits.
func Entities(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadEntitiesToEvent(zeroLoggerEvent, target.Summary().Entities).Send()
}

// Entity logs a single entity.
func Entity(logger *zerolog.Logger, entity *ecs.Entity, level zerolog.Level) {
	logger.WithLevel(level).
		Str("entity_id", string(entity.ID())).
		Int("total_components", entity.Len()).
		Array("traits", loadTraitsIntoArray(entity.Traits())).
		Send()
}

// World logs everything about the world: tick, systems, entities and event subscriptions.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	summary := target.Summary()
	zeroLoggerEvent := logger.WithLevel(level).Uint64("tick", summary.Tick)
	zeroLoggerEvent = loadSystemsToEvent(zeroLoggerEvent, summary.Systems)
	zeroLoggerEvent = loadEntitiesToEvent(zeroLoggerEvent, summary.Entities)
	zeroLoggerEvent = loadEventsToEvent(zeroLoggerEvent, summary.Events)
	zeroLoggerEvent.Send()
}

// CreateSystemLogger creates a Sub Logger with the entry {"system" : systemName}.
func CreateSystemLogger(logger *zerolog.Logger, systemName string) *zerolog.Logger {
	newLogger := logger.With().Str("system", systemName).Logger()
	return &newLogger
}

// CreateTraceLogger Creates a trace Logger. Using a single id you can use this Logger to follow and log a data path.
func CreateTraceLogger(logger *zerolog.Logger, traceID string) *zerolog.Logger {
	newLogger := logger.With().Str("trace_id", traceID).Logger()
	return &newLogger
}
