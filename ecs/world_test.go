package ecs_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"pkg.world.dev/world-engine/nucleus/ecs"
)

func TestSystemsRunInAscendingPriorityOrder(t *testing.T) {
	w := newTestWorld()
	// Register out of order on purpose.
	for _, s := range []*recordingSystem{
		newRecordingSystem("third", 30),
		newRecordingSystem("first", -5),
		newRecordingSystem("second", 7),
	} {
		assert.NilError(t, w.RegisterSystem(s))
	}

	ctx := &tickContext{}
	assert.NilError(t, w.Update(ctx))
	assert.DeepEqual(t, []string{"first", "second", "third"}, ctx.calls)
	assert.Equal(t, uint64(1), w.CurrentTick())
}

func TestEndToEndMatching(t *testing.T) {
	w := newTestWorld()
	_, err := w.CreateEntity("e1", Alpha{Value: 1}, Beta{Value: "b"})
	assert.NilError(t, err)

	s1 := newRecordingSystem("s1", 1, ecs.IDOf[Alpha]())
	s2 := newRecordingSystem("s2", 0, ecs.TraitsOf(Alpha{}, Beta{}, Gamma{})...)
	assert.NilError(t, w.RegisterSystem(s1))
	assert.NilError(t, w.RegisterSystem(s2))

	ctx := &tickContext{}
	assert.NilError(t, w.Update(ctx))

	assert.DeepEqual(t, []string{"s2", "s1"}, ctx.calls)
	assert.Equal(t, 0, len(s2.last()))
	assert.DeepEqual(t, []ecs.EntityID{"e1"}, s1.last())
}

func TestSystemReceivesEntityIffTraitsAreASubset(t *testing.T) {
	w := newTestWorld()
	_, err := w.CreateEntity("alpha", Alpha{})
	assert.NilError(t, err)
	_, err = w.CreateEntity("alpha-beta", Alpha{}, Beta{})
	assert.NilError(t, err)
	_, err = w.CreateEntity("all", Alpha{}, Beta{}, Gamma{})
	assert.NilError(t, err)
	_, err = w.CreateEntity("empty")
	assert.NilError(t, err)

	testCases := []struct {
		traits []ecs.ComponentID
		want   []ecs.EntityID
	}{
		{traits: nil, want: []ecs.EntityID{"alpha", "alpha-beta", "all", "empty"}},
		{traits: ecs.TraitsOf(Alpha{}), want: []ecs.EntityID{"alpha", "alpha-beta", "all"}},
		{traits: ecs.TraitsOf(Beta{}, Alpha{}), want: []ecs.EntityID{"alpha-beta", "all"}},
		{traits: ecs.TraitsOf(Gamma{}), want: []ecs.EntityID{"all"}},
	}

	systems := make([]*recordingSystem, 0, len(testCases))
	for i, tc := range testCases {
		s := newRecordingSystem("s", ecs.Priority(i), tc.traits...)
		systems = append(systems, s)
		assert.NilError(t, w.RegisterSystem(s))
	}
	assert.NilError(t, w.Update(&tickContext{}))

	for i, tc := range testCases {
		assert.DeepEqual(t, tc.want, systems[i].last())
	}
}

func TestDuplicateEntityIsRejected(t *testing.T) {
	w := newTestWorld()
	first, err := w.CreateEntity("x", Alpha{Value: 1})
	assert.NilError(t, err)

	_, err = w.CreateEntity("x", Beta{})
	assert.Check(t, eris.Is(err, ecs.ErrDuplicateEntity))
	assert.Equal(t, 1, w.EntityCount())

	got, ok := w.Entity("x")
	assert.Check(t, ok)
	assert.Equal(t, first, got)
	assert.Check(t, got.Has(ecs.IDOf[Alpha]()))

	// An explicitly built entity fails the same way.
	other, err := ecs.NewEntity("x", Gamma{})
	assert.NilError(t, err)
	err = w.RegisterEntity(other)
	assert.Check(t, errors.Is(err, ecs.ErrDuplicateEntity))
	assert.Equal(t, 1, w.EntityCount())
}

func TestDuplicatePriorityIsRejected(t *testing.T) {
	w := newTestWorld()
	assert.NilError(t, w.RegisterSystem(newRecordingSystem("a", 3)))

	err := w.RegisterSystem(newRecordingSystem("b", 3))
	assert.Check(t, eris.Is(err, ecs.ErrDuplicatePriority))

	systems := w.Systems()
	require.Len(t, systems, 1)
	assert.Equal(t, "a", systems[0].(ecs.Named).Name())
}

func TestUnregisterUnknownSystemAndEntity(t *testing.T) {
	w := newTestWorld()
	err := w.UnregisterSystem(newRecordingSystem("ghost", 1))
	assert.Check(t, eris.Is(err, ecs.ErrUnknownSystem))

	e, err := ecs.NewEntity("ghost")
	assert.NilError(t, err)
	err = w.UnregisterEntity(e)
	assert.Check(t, eris.Is(err, ecs.ErrUnknownEntity))
}

func TestUnregisteredEntityIsNotSeenOnLaterTicks(t *testing.T) {
	w := newTestWorld()
	e1, err := w.CreateEntity("e1", Alpha{})
	assert.NilError(t, err)
	_, err = w.CreateEntity("e2", Alpha{})
	assert.NilError(t, err)

	s := newRecordingSystem("s", 0, ecs.IDOf[Alpha]())
	assert.NilError(t, w.RegisterSystem(s))
	assert.NilError(t, w.Update(&tickContext{}))
	assert.DeepEqual(t, []ecs.EntityID{"e1", "e2"}, s.last())

	assert.NilError(t, w.UnregisterEntity(e1))
	assert.NilError(t, w.Update(&tickContext{}))
	assert.DeepEqual(t, []ecs.EntityID{"e2"}, s.last())

	// The entity may join a world again once it has been removed.
	assert.NilError(t, w.RegisterEntity(e1))
	assert.NilError(t, w.Update(&tickContext{}))
	assert.DeepEqual(t, []ecs.EntityID{"e2", "e1"}, s.last())
}

func TestEntitiesRegisteredBetweenTicksAreSeenNextTick(t *testing.T) {
	w := newTestWorld()
	s := newRecordingSystem("s", 0, ecs.IDOf[Beta]())
	assert.NilError(t, w.RegisterSystem(s))

	assert.NilError(t, w.Update(&tickContext{}))
	assert.Equal(t, 0, len(s.last()))

	_, err := w.CreateEntity("late", Beta{})
	assert.NilError(t, err)
	assert.NilError(t, w.Update(&tickContext{}))
	assert.DeepEqual(t, []ecs.EntityID{"late"}, s.last())

	matched, err := w.Matched(0)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(matched))
}

func TestUnregisterSystemStopsItFromRunning(t *testing.T) {
	w := newTestWorld()
	a := newRecordingSystem("a", 1)
	b := newRecordingSystem("b", 2)
	assert.NilError(t, w.RegisterSystems(a, b))
	assert.NilError(t, w.UnregisterSystem(a))

	ctx := &tickContext{}
	assert.NilError(t, w.Update(ctx))
	assert.DeepEqual(t, []string{"b"}, ctx.calls)

	// The priority is free again.
	assert.NilError(t, w.RegisterSystem(newRecordingSystem("c", 1)))
}

func TestSystemErrorAbortsTheTick(t *testing.T) {
	w := newTestWorld()
	errBoom := errors.New("boom")
	failing := ecs.NewSystem[*tickContext](0, nil, func(ctx *tickContext, _ []*ecs.Entity) error {
		ctx.calls = append(ctx.calls, "failing")
		return errBoom
	})
	after := newRecordingSystem("after", 1)
	assert.NilError(t, w.RegisterSystems(failing, after))

	ctx := &tickContext{}
	err := w.Update(ctx)
	assert.Check(t, errors.Is(err, errBoom))
	assert.ErrorContains(t, err, "priority 0")
	assert.DeepEqual(t, []string{"failing"}, ctx.calls)
	assert.Equal(t, uint64(0), w.CurrentTick())
	assert.Equal(t, "no_system", w.CurrentSystem())
}

func TestSystemPanicIsPropagated(t *testing.T) {
	w := newTestWorld()
	assert.NilError(t, w.RegisterSystem(ecs.NewSystem[*tickContext](0, nil,
		func(_ *tickContext, _ []*ecs.Entity) error {
			panic("system exploded")
		})))

	require.PanicsWithValue(t, "system exploded", func() {
		_ = w.Update(&tickContext{})
	})
	assert.Equal(t, "no_system", w.CurrentSystem())
}

func TestMutationsDuringATick(t *testing.T) {
	w := newTestWorld()
	e1, err := w.CreateEntity("e1", Alpha{})
	assert.NilError(t, err)
	_, err = w.CreateEntity("e2", Alpha{})
	assert.NilError(t, err)

	late := newRecordingSystem("late", 5)
	skipped := newRecordingSystem("skipped", 9)
	var handed []ecs.EntityID
	mutator := ecs.NewSystem[*tickContext](1, ecs.TraitsOf(Alpha{}),
		func(ctx *tickContext, entities []*ecs.Entity) error {
			ctx.calls = append(ctx.calls, "mutator")
			if err := w.UnregisterEntity(e1); err != nil {
				return err
			}
			if err := w.UnregisterSystem(skipped); err != nil {
				return err
			}
			if err := w.RegisterSystem(late); err != nil {
				return err
			}
			for _, e := range entities {
				handed = append(handed, e.ID())
			}
			return nil
		})
	assert.NilError(t, w.RegisterSystems(mutator, skipped))

	ctx := &tickContext{}
	assert.NilError(t, w.Update(ctx))
	// The slice handed to the running system is not modified by the unregister.
	assert.DeepEqual(t, []ecs.EntityID{"e1", "e2"}, handed)
	// Systems added during the tick wait for the next one, removed ones are skipped.
	assert.DeepEqual(t, []string{"mutator"}, ctx.calls)

	matched, err := w.Matched(1)
	assert.NilError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, ecs.EntityID("e2"), matched[0].ID())
}

func TestForEachVisitsEveryMatchingEntity(t *testing.T) {
	w := newTestWorld()
	for _, id := range []ecs.EntityID{"a", "b", "c"} {
		_, err := w.CreateEntity(id, Alpha{Value: len(id)})
		assert.NilError(t, err)
	}
	_, err := w.CreateEntity("no-alpha", Beta{})
	assert.NilError(t, err)

	var visited []ecs.EntityID
	s := ecs.ForEach[*tickContext](0, ecs.TraitsOf(Alpha{}), func(_ *tickContext, e *ecs.Entity) error {
		visited = append(visited, e.ID())
		return nil
	})
	assert.NilError(t, w.RegisterSystem(s))
	assert.NilError(t, w.Update(&tickContext{}))
	assert.DeepEqual(t, []ecs.EntityID{"a", "b", "c"}, visited)
}

func TestForEachStopsAtFirstError(t *testing.T) {
	w := newTestWorld()
	_, err := w.CreateEntity("a", Alpha{})
	assert.NilError(t, err)
	_, err = w.CreateEntity("b", Alpha{})
	assert.NilError(t, err)

	calls := 0
	errStop := errors.New("stop")
	s := ecs.ForEach[*tickContext](0, nil, func(_ *tickContext, _ *ecs.Entity) error {
		calls++
		return errStop
	})
	assert.NilError(t, w.RegisterSystem(s))
	err = w.Update(&tickContext{})
	assert.Check(t, errors.Is(err, errStop))
	assert.ErrorContains(t, err, `entity "a"`)
	assert.Equal(t, 1, calls)
}

func TestEntityCanOnlyJoinOneWorld(t *testing.T) {
	w1, w2 := newTestWorld(), newTestWorld()
	e, err := w1.CreateEntity("shared", Alpha{})
	assert.NilError(t, err)

	err = w2.RegisterEntity(e)
	assert.Check(t, eris.Is(err, ecs.ErrEntityInOtherWorld))
	assert.Equal(t, 0, w2.EntityCount())
}

func TestSummaryDescribesTheWorld(t *testing.T) {
	w := newTestWorld()
	_, err := w.CreateEntity("e1", Alpha{})
	assert.NilError(t, err)
	assert.NilError(t, w.RegisterSystem(newRecordingSystem("alpha", 2, ecs.IDOf[Alpha]())))
	assert.NilError(t, w.Events().Subscribe("tick", ecs.Listen(func(*tickContext, ecs.Event) error {
		return nil
	})))

	summary := w.Summary()
	require.Len(t, summary.Systems, 1)
	assert.Equal(t, "alpha", summary.Systems[0].Name)
	assert.DeepEqual(t, []ecs.EntityID{"e1"}, summary.Systems[0].Matched)
	require.Len(t, summary.Entities, 1)
	assert.DeepEqual(t, []ecs.ComponentID{ecs.IDOf[Alpha]()}, summary.Entities[0].Traits)
	assert.DeepEqual(t, []ecs.EventSummary{{Kind: "tick", Subscribers: 1}}, summary.Events)
}

func TestSystemLoggerCarriesTheRunningSystem(t *testing.T) {
	var buf bytes.Buffer
	w := ecs.NewWorld[*tickContext](ecs.WithLogger(zerolog.New(&buf)))
	sys := ecs.NewSystem[*tickContext](3, nil, func(*tickContext, []*ecs.Entity) error {
		w.SystemLogger().Info().Msg("inside")
		return nil
	})
	require.NoError(t, w.RegisterSystem(sys))
	buf.Reset()

	require.NoError(t, w.Update(&tickContext{}))
	assert.Check(t, bytes.Contains(buf.Bytes(), []byte(`"priority":3`)), buf.String())
	assert.Check(t, bytes.Contains(buf.Bytes(), []byte(`"message":"inside"`)), buf.String())
	assert.Equal(t, w.Logger(), w.SystemLogger())
}

func TestSystemsCannotCorruptTheMatchSet(t *testing.T) {
	w := newTestWorld()
	var handed [][]*ecs.Entity
	sys := ecs.NewSystem[*tickContext](1, ecs.TraitsOf(Alpha{}), func(_ *tickContext, entities []*ecs.Entity) error {
		handed = append(handed, entities)
		for i := range entities {
			entities[i] = nil
		}
		return nil
	})
	require.NoError(t, w.RegisterSystem(sys))
	for _, id := range []ecs.EntityID{"e1", "e2"} {
		_, err := w.CreateEntity(id, Alpha{})
		require.NoError(t, err)
	}

	require.NoError(t, w.Update(&tickContext{}))
	require.NoError(t, w.Update(&tickContext{}))

	require.Len(t, handed, 2)
	assert.Equal(t, 2, len(handed[1]))
	for _, e := range handed[1] {
		assert.Check(t, e == nil)
	}
	matched, err := w.Matched(1)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, ecs.EntityID("e1"), matched[0].ID())
	assert.Equal(t, ecs.EntityID("e2"), matched[1].ID())
	assert.DeepEqual(t, []ecs.EntityID{"e1", "e2"}, w.Summary().Systems[0].Matched)
}

func TestPrettyLogReplacesTheConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	plain := ecs.NewWorld[*tickContext](ecs.WithLogger(zerolog.New(&buf)))
	root := plain.RootLogger()
	root.Info().Msg("plain")
	assert.Check(t, bytes.Contains(buf.Bytes(), []byte(`"message":"plain"`)), buf.String())
	assert.Check(t, !bytes.Contains(buf.Bytes(), []byte(`"component"`)), buf.String())

	buf.Reset()
	pretty := ecs.NewWorld[*tickContext](ecs.WithLogger(zerolog.New(&buf)), ecs.WithPrettyLog())
	root = pretty.RootLogger()
	root.Info().Msg("pretty")
	pretty.Logger().Info().Msg("pretty")
	assert.Equal(t, 0, buf.Len())
}
