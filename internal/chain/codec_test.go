package chain_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/dag"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

func sampleChain() chain.Chain {
	return chain.Chain{
		Blocks: []chain.Block{
			{ID: "t", Type: chain.TypeTrigger, Label: "Monday morning", Config: &chain.TriggerConfig{
				Event: chain.EventTimeBased, DaysOfWeek: []string{"monday", "friday"}, Time: "07:00",
			}},
			{ID: "c", Type: chain.TypeCondition, Config: &chain.ConditionConfig{
				Composite:     true,
				LogicOperator: chain.LogicOr,
				Subconditions: [2]chain.SimpleCondition{
					{ConditionType: chain.CondPurchaseAmount, Operator: ">=", Value: 0},
					{ConditionType: chain.CondCategory, Operator: "contains", Category: "food"},
				},
			}},
			{ID: "a", Type: chain.TypeAction, Config: &chain.ActionConfig{Action: chain.ActionSetTag, TagName: "early-bird"}},
			{ID: "m", Type: chain.TypeCommunication, Config: &chain.CommunicationConfig{
				Channel: "push", Subject: "Hey", Message: "You got a tag",
			}},
			{ID: "x", Type: chain.TypeAction, Config: &chain.ActionConfig{Action: chain.ActionBonus, BonusAmount: 25}},
		},
		Connections: []chain.Connection{
			{SourceID: "t", TargetID: "c"},
			{SourceID: "c", TargetID: "a", Branch: chain.BranchTrue},
			{SourceID: "c", TargetID: "x", Branch: chain.BranchFalse},
			{SourceID: "a", TargetID: "m"},
			{SourceID: "m", TargetID: "ghost"},
		},
	}
}

func TestRoundTripPreservesBehaviour(t *testing.T) {
	for _, format := range []chain.Format{chain.FormatJSON, chain.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			orig := sampleChain()
			var buf bytes.Buffer
			require.NoError(t, chain.Encode(&buf, orig, format))

			decoded, err := chain.Decode(&buf, format)
			require.NoError(t, err)

			assert.Equal(t, orig, decoded)
			assert.Equal(t, dag.Validate(orig), dag.Validate(decoded))
			ev := event.SmokeTest()
			assert.Equal(t, dag.Simulate(orig, ev), dag.Simulate(decoded, ev))
		})
	}
}

func TestDecode_EditorDocument(t *testing.T) {
	doc := `{
	  "blocks": [
	    {"id": "t", "type": "trigger", "config": {"event": "purchase", "status": "", "dayOfWeek": [], "time": ""}},
	    {"id": "c", "type": "condition", "label": "big spender",
	     "config": {"composite": false, "conditionType": "purchase_amount", "operator": ">", "value": "1000", "count": 1}},
	    {"id": "a", "type": "action", "config": {"action": "bonus", "bonusAmount": 100, "validityPeriod": 30}}
	  ],
	  "connections": [
	    {"sourceId": "t", "targetId": "c"},
	    {"sourceId": "c", "targetId": "a", "branch": "true"}
	  ]
	}`
	c, err := chain.Decode(strings.NewReader(doc), chain.FormatJSON)
	require.NoError(t, err)
	require.Len(t, c.Blocks, 3)

	cond := c.Blocks[1].Condition()
	require.NotNil(t, cond)
	assert.Equal(t, "big spender", c.Blocks[1].Label)
	assert.Equal(t, float64(1000), cond.Value)
	assert.Equal(t, chain.CondPurchaseAmount, cond.ConditionType)

	act, ok := c.Blocks[2].Config.(*chain.ActionConfig)
	require.True(t, ok)
	assert.Equal(t, 30, act.ValidityPeriod)
	assert.Equal(t, chain.BranchTrue, c.Connections[1].Branch)
}

func TestDecode_YAMLDocument(t *testing.T) {
	doc := `
blocks:
  - id: t
    type: trigger
    config:
      event: time_based
      dayOfWeek: [monday]
      time: "07:00"
  - id: c
    type: condition
    config:
      composite: true
      logicOperator: AND
      subconditions:
        - {conditionType: vip_status, vip: true}
        - {conditionType: purchase_count, operator: ">", count: 2}
connections:
  - {sourceId: t, targetId: c}
`
	c, err := chain.Decode(strings.NewReader(doc), chain.FormatYAML)
	require.NoError(t, err)
	cond := c.Blocks[1].Condition()
	require.NotNil(t, cond)
	assert.True(t, cond.Composite)
	assert.True(t, cond.Subconditions[0].VIP)
	assert.Equal(t, float64(2), cond.Subconditions[1].Count)
	assert.Equal(t, []string{"monday"}, c.Blocks[0].Trigger().DaysOfWeek)
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type":                    `{"blocks":[{"id":"b","type":"widget","config":{}}]}`,
		"three subconditions":             `{"blocks":[{"id":"b","type":"condition","config":{"subconditions":[{},{},{}]}}]}`,
		"composite without subconditions": `{"blocks":[{"id":"b","type":"condition","config":{"composite":true,"logicOperator":"AND"}}]}`,
		"composite with one subcondition": `{"blocks":[{"id":"b","type":"condition","config":{"composite":true,"logicOperator":"OR","subconditions":[{"conditionType":"vip_status","vip":true}]}}]}`,
		"config of wrong shape":           `{"blocks":[{"id":"b","type":"action","config":{"bonusAmount":"lots"}}]}`,
		"not json":                        `blocks: []`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := chain.Decode(strings.NewReader(doc), chain.FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	c, err := chain.Decode(strings.NewReader(""), chain.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, c.Blocks)
	assert.NotNil(t, c.Connections)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, chain.FormatYAML, chain.FormatFromPath("chains/loyalty.YAML"))
	assert.Equal(t, chain.FormatYAML, chain.FormatFromPath("x.yml"))
	assert.Equal(t, chain.FormatJSON, chain.FormatFromPath("x.json"))
	assert.Equal(t, chain.FormatJSON, chain.FormatFromPath("noext"))
}
