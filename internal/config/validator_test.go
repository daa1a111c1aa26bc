package config

import (
	"strings"
	"testing"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
)

func validWorkspace() *Workspace {
	ws := &Workspace{Version: "v1"}
	ws.Chain = chain.Chain{
		Blocks: []chain.Block{
			{ID: "t", Type: chain.TypeTrigger, Config: chain.DefaultConfig(chain.TypeTrigger)},
			{ID: "c", Type: chain.TypeCondition, Config: chain.DefaultConfig(chain.TypeCondition)},
		},
		Connections: []chain.Connection{
			{SourceID: "t", TargetID: "c"},
			{SourceID: "c", TargetID: "ghost", Branch: chain.BranchFalse},
		},
	}
	ApplyDefaults(ws)
	return ws
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(ws *Workspace)
		wantErr string
	}{
		{name: "valid", mutate: func(*Workspace) {}},
		{
			name:    "missing version",
			mutate:  func(ws *Workspace) { ws.Version = "" },
			wantErr: "version is required",
		},
		{
			name:    "bad log level",
			mutate:  func(ws *Workspace) { ws.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name: "duplicate id",
			mutate: func(ws *Workspace) {
				ws.Chain.Blocks = append(ws.Chain.Blocks, ws.Chain.Blocks[0])
			},
			wantErr: `duplicate block id "t"`,
		},
		{
			name: "mismatched config",
			mutate: func(ws *Workspace) {
				ws.Chain.Blocks[0].Config = chain.DefaultConfig(chain.TypeAction)
			},
			wantErr: "action config on a trigger block",
		},
		{
			name: "branch on trigger edge",
			mutate: func(ws *Workspace) {
				ws.Chain.Connections[0].Branch = chain.BranchTrue
			},
			wantErr: "leaving trigger block t",
		},
		{
			name: "unknown branch value",
			mutate: func(ws *Workspace) {
				ws.Chain.Connections[1].Branch = "maybe"
			},
			wantErr: `got "maybe"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ws := validWorkspace()
			tc.mutate(ws)
			err := Validate(ws)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDanglingConnections(t *testing.T) {
	got := DanglingConnections(validWorkspace().Chain)
	if len(got) != 1 || got[0].TargetID != "ghost" {
		t.Errorf("expected the edge to ghost, got %v", got)
	}
}
