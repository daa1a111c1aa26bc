package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/chainflow/internal/action/loyalty"
	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/config"
	"github.com/gyaneshwarpardhi/chainflow/internal/engine"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

func purchaseChain(threshold float64) chain.Chain {
	cond := chain.DefaultConfig(chain.TypeCondition).(*chain.ConditionConfig)
	cond.Value = threshold
	return chain.Chain{
		Blocks: []chain.Block{
			{ID: "t", Type: chain.TypeTrigger, Config: &chain.TriggerConfig{Event: chain.EventPurchase}},
			{ID: "c", Type: chain.TypeCondition, Config: cond},
			{ID: "a", Type: chain.TypeAction, Config: &chain.ActionConfig{Action: chain.ActionBonus, BonusAmount: 50}},
		},
		Connections: []chain.Connection{
			{SourceID: "t", TargetID: "c"},
			{SourceID: "c", TargetID: "a", Branch: chain.BranchTrue},
		},
	}
}

func newEngine(t *testing.T, c chain.Chain, def *event.Event) *engine.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(ctx, c, loyalty.NewRegistry(), config.EngineConf{Workers: 2, QueueDepth: 16, TimeoutMs: 2000}, def)
	t.Cleanup(func() {
		cancel()
		eng.Shutdown()
	})
	return eng
}

func TestEngine_SimulateUsesDefaultEvent(t *testing.T) {
	eng := newEngine(t, purchaseChain(1000), nil)

	res, err := eng.Simulate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "time_based", res.Event.Kind)
	assert.Equal(t, []string{"No trigger matched event time_based"}, res.Log)

	eng.SetDefaultEvent(&event.Event{Kind: chain.EventPurchase, Amount: 1500})
	res, err = eng.Simulate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, res.TriggersFired)
	assert.Equal(t, 1, res.ConditionsPassed)
	assert.Equal(t, 1, res.Effects)
}

func TestEngine_SimulateCancelled(t *testing.T) {
	eng := newEngine(t, purchaseChain(1000), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Simulate(ctx, &event.Event{Kind: chain.EventPurchase})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_SwapChain(t *testing.T) {
	eng := newEngine(t, purchaseChain(1000), nil)
	ev := &event.Event{Kind: chain.EventPurchase, Amount: 500}

	res, err := eng.Simulate(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ConditionsFailed)

	eng.SwapChain(purchaseChain(100))
	res, err = eng.Simulate(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ConditionsPassed)

	got := eng.Chain()
	got.Blocks[1].Config.(*chain.ConditionConfig).Value = 1
	assert.Equal(t, float64(100), eng.Chain().Blocks[1].Config.(*chain.ConditionConfig).Value,
		"Chain returns a copy")
}

func TestEngine_Validate(t *testing.T) {
	eng := newEngine(t, purchaseChain(1000), nil)
	assert.True(t, eng.Validate().Valid)

	c := purchaseChain(1000)
	c.Connections = c.Connections[:1]
	eng.SwapChain(c)
	report := eng.Validate()
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "c", report.Errors[0].BlockID)
}

func TestEngine_SimulateBatchPreservesOrder(t *testing.T) {
	eng := newEngine(t, purchaseChain(1000), nil)
	events := []*event.Event{
		{Kind: chain.EventPurchase, Amount: 1500},
		{Kind: chain.EventRegistration},
		{Kind: chain.EventPurchase, Amount: 10},
		nil,
	}

	items, err := eng.SimulateBatch(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, items, 4)
	for i, it := range items {
		require.Empty(t, it.Error, "item %d", i)
		require.NotNil(t, it.Result, "item %d", i)
	}
	assert.Equal(t, 1, items[0].Result.ConditionsPassed)
	assert.Empty(t, items[1].Result.TriggersFired)
	assert.Equal(t, 1, items[2].Result.ConditionsFailed)
	assert.Equal(t, "time_based", items[3].Result.Event.Kind)
}

func TestEngine_SimulateBatchAfterShutdown(t *testing.T) {
	eng := engine.New(context.Background(), purchaseChain(1000), loyalty.NewRegistry(),
		config.EngineConf{Workers: 1, QueueDepth: 1}, nil)
	eng.Shutdown()

	items, err := eng.SimulateBatch(context.Background(), []*event.Event{{Kind: chain.EventPurchase}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Result)
	assert.Equal(t, engine.ErrQueueFull.Error(), items[0].Error)
}
