package engine_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnet/ack-portal/engine"
)

func TestAggregate_CompletionRatio(t *testing.T) {
	// GIVEN: three engineers, one of whom acknowledged the document
	// WHEN: the aggregate is computed
	// THEN: completion is exactly 1/3 rounded to four places

	mem, eng := newFixture()
	addEmployee(t, mem, "alice", deptEng, true)
	addEmployee(t, mem, "bob", deptEng, true)
	addEmployee(t, mem, "carl", deptEng, true)
	publish(t, mem, eng, "handbook", deptEng)
	acknowledge(t, mem, eng, "alice", "handbook")

	agg := aggregate(t, mem, eng, "handbook")
	assert.Equal(t, 3, agg.Total)
	assert.Equal(t, 1, agg.Acknowledged)
	assert.False(t, agg.Complete())
	assert.True(t, agg.Completion().Equal(decimal.RequireFromString("0.3333")),
		"got %s", agg.Completion())
}

func TestAggregate_NoEntries_ZeroCompletionButComplete(t *testing.T) {
	// A document relevant to an empty department has nobody to wait for.
	mem, eng := newFixture()
	publish(t, mem, eng, "orphan", deptHR)

	agg := aggregate(t, mem, eng, "orphan")
	assert.Equal(t, 0, agg.Total)
	assert.True(t, agg.Completion().IsZero())
	assert.True(t, agg.Complete())
}

func TestAggregates_PreservesOrder(t *testing.T) {
	mem, eng := newFixture()
	addEmployee(t, mem, "alice", deptEng, true)
	publish(t, mem, eng, "b-doc", deptEng)
	publish(t, mem, eng, "a-doc", deptEng)
	acknowledge(t, mem, eng, "alice", "b-doc")

	ctx := context.Background()
	var aggs []engine.Aggregate
	err := mem.WithTx(ctx, func(tx engine.Tx) error {
		var err error
		aggs, err = eng.Aggregates(ctx, tx, []engine.DocumentID{"b-doc", "a-doc"})
		return err
	})
	require.NoError(t, err)

	require.Len(t, aggs, 2)
	assert.Equal(t, engine.DocumentID("b-doc"), aggs[0].DocumentID)
	assert.Equal(t, 1, aggs[0].Acknowledged)
	assert.Equal(t, engine.DocumentID("a-doc"), aggs[1].DocumentID)
	assert.Equal(t, 0, aggs[1].Acknowledged)
}

func TestRelevanceSet_Diff(t *testing.T) {
	old := engine.NewRelevanceSet("a", "b", "c")
	next := engine.NewRelevanceSet("b", "c", "d")

	added, removed := old.Diff(next)
	assert.Equal(t, []engine.DepartmentID{"d"}, added)
	assert.Equal(t, []engine.DepartmentID{"a"}, removed)

	added, removed = old.Diff(old.Clone())
	assert.Empty(t, added)
	assert.Empty(t, removed)
}
