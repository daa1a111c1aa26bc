package editor_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/dag"
	"github.com/gyaneshwarpardhi/chainflow/internal/editor"
)

func TestSession_AddNextBuildsValidChain(t *testing.T) {
	s := editor.NewSession(chain.Chain{})

	trig, err := s.AddBlock(chain.TypeTrigger, "signup")
	require.NoError(t, err)
	assert.NotEmpty(t, trig.ID)
	assert.Equal(t, chain.DefaultConfig(chain.TypeTrigger), trig.Config)

	cond, err := s.AddNext(trig.ID)
	require.NoError(t, err)
	assert.Equal(t, chain.TypeCondition, cond.Type)

	act, err := s.AddNext(cond.ID)
	require.NoError(t, err)
	assert.Equal(t, chain.TypeAction, act.Type)

	comm, err := s.AddNext(act.ID)
	require.NoError(t, err)
	assert.Equal(t, chain.TypeCommunication, comm.Type)

	_, err = s.AddNext(comm.ID)
	assert.ErrorIs(t, err, editor.ErrNoNextBlock)

	c := s.Snapshot()
	require.Len(t, c.Connections, 3)
	assert.Equal(t, chain.BranchNone, c.Connections[0].Branch)
	assert.Equal(t, chain.BranchTrue, c.Connections[1].Branch)
	assert.Equal(t, chain.BranchNone, c.Connections[2].Branch)
	assert.Empty(t, dag.Validate(c))
}

func TestSession_AddBlockUnknownType(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	_, err := s.AddBlock("delay", "")
	assert.Error(t, err)
	undo, _ := s.History()
	assert.Zero(t, undo)
}

func TestSession_ConnectRules(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	trig, _ := s.AddBlock(chain.TypeTrigger, "")
	cond, _ := s.AddBlock(chain.TypeCondition, "")
	act, _ := s.AddBlock(chain.TypeAction, "")

	cases := []struct {
		name     string
		src, dst string
		branch   chain.Branch
		wantErr  error
	}{
		{"trigger to condition", trig.ID, cond.ID, chain.BranchNone, nil},
		{"condition false branch", cond.ID, act.ID, chain.BranchFalse, nil},
		{"trigger to action", trig.ID, act.ID, chain.BranchNone, editor.ErrInvalidConnection},
		{"action to trigger", act.ID, trig.ID, chain.BranchNone, editor.ErrInvalidConnection},
		{"self loop", cond.ID, cond.ID, chain.BranchNone, editor.ErrInvalidConnection},
		{"branch on trigger", trig.ID, cond.ID, chain.BranchTrue, editor.ErrInvalidConnection},
		{"unknown branch", cond.ID, act.ID, "maybe", editor.ErrInvalidConnection},
		{"missing source", "nope", act.ID, chain.BranchNone, editor.ErrBlockNotFound},
		{"missing target", cond.ID, "nope", chain.BranchNone, editor.ErrBlockNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn, err := s.Connect(tc.src, tc.dst, tc.branch)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.branch, conn.Branch)
		})
	}
	assert.Len(t, s.Snapshot().Connections, 2)
}

func TestSession_UpdateBlock(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	act, _ := s.AddBlock(chain.TypeAction, "")

	updated, err := s.UpdateBlock(act.ID, "welcome bonus", &chain.ActionConfig{Action: chain.ActionBonus, BonusAmount: 5})
	require.NoError(t, err)
	assert.Equal(t, "welcome bonus", updated.Label)

	got, _ := s.Snapshot().Block(act.ID)
	assert.Equal(t, float64(5), got.Config.(*chain.ActionConfig).BonusAmount)

	relabelled, err := s.UpdateBlock(act.ID, "renamed", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(5), relabelled.Config.(*chain.ActionConfig).BonusAmount)

	_, err = s.UpdateBlock(act.ID, "", &chain.TriggerConfig{})
	assert.ErrorIs(t, err, editor.ErrConfigMismatch)

	_, err = s.UpdateBlock("nope", "", nil)
	assert.ErrorIs(t, err, editor.ErrBlockNotFound)
}

func TestSession_DeleteBlockRemovesEdges(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	trig, _ := s.AddBlock(chain.TypeTrigger, "")
	cond, _ := s.AddNext(trig.ID)
	_, _ = s.AddNext(cond.ID)

	require.NoError(t, s.DeleteBlock(cond.ID))
	c := s.Snapshot()
	assert.Len(t, c.Blocks, 2)
	assert.Empty(t, c.Connections)

	assert.ErrorIs(t, s.DeleteBlock(cond.ID), editor.ErrBlockNotFound)
}

func TestSession_UndoRedo(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())

	trig, _ := s.AddBlock(chain.TypeTrigger, "")
	_, _ = s.AddNext(trig.ID)
	require.Len(t, s.Snapshot().Blocks, 2)

	require.True(t, s.Undo())
	assert.Len(t, s.Snapshot().Blocks, 1)
	assert.Empty(t, s.Snapshot().Connections)

	require.True(t, s.Redo())
	assert.Len(t, s.Snapshot().Blocks, 2)
	assert.Len(t, s.Snapshot().Connections, 1)

	require.True(t, s.Undo())
	_, _ = s.AddBlock(chain.TypeAction, "")
	assert.False(t, s.Redo(), "a new mutation clears the redo history")
	undo, redo := s.History()
	assert.Equal(t, 2, undo)
	assert.Zero(t, redo)
}

func TestSession_SnapshotIsIsolated(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	act, _ := s.AddBlock(chain.TypeAction, "")

	snap := s.Snapshot()
	snap.Blocks[0].Config.(*chain.ActionConfig).BonusAmount = 9999

	got, _ := s.Snapshot().Block(act.ID)
	assert.Equal(t, float64(100), got.Config.(*chain.ActionConfig).BonusAmount)
}

func TestSession_ImportExport(t *testing.T) {
	s := editor.NewSession(chain.Chain{})
	trig, _ := s.AddBlock(chain.TypeTrigger, "")
	_, _ = s.AddNext(trig.ID)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf, chain.FormatJSON))

	other := editor.NewSession(chain.Chain{})
	imported, err := other.Import(&buf, chain.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), imported)
	assert.Equal(t, s.Snapshot(), other.Snapshot())

	_, err = other.Import(strings.NewReader("{not json"), chain.FormatJSON)
	assert.Error(t, err)
	assert.Equal(t, s.Snapshot(), other.Snapshot(), "failed import leaves the chain unchanged")

	require.True(t, other.Undo())
	assert.Empty(t, other.Snapshot().Blocks)
}
