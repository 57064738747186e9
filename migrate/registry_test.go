// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package migrate

import (
	"context"
	"database/sql"
	"testing"
)

func noopOp(name string) Operation {
	return Data(name, func(ctx context.Context, tx *sql.Tx, rc RunContext) error {
		return nil
	})
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
	}{
		{
			name: "valid chain",
			steps: []Step{
				{Level: 1, Name: "one", Ops: []Operation{noopOp("a")}},
				{Level: 2, Name: "two", Ops: []Operation{noopOp("b")}},
			},
		},
		{
			name:  "empty registry",
			steps: nil,
		},
		{
			name: "chain must start at 1",
			steps: []Step{
				{Level: 2, Name: "two", Ops: []Operation{noopOp("a")}},
			},
			wantErr: true,
		},
		{
			name: "gap in chain",
			steps: []Step{
				{Level: 1, Name: "one", Ops: []Operation{noopOp("a")}},
				{Level: 3, Name: "three", Ops: []Operation{noopOp("b")}},
			},
			wantErr: true,
		},
		{
			name: "duplicate level",
			steps: []Step{
				{Level: 1, Name: "one", Ops: []Operation{noopOp("a")}},
				{Level: 1, Name: "one again", Ops: []Operation{noopOp("b")}},
			},
			wantErr: true,
		},
		{
			name: "step without operations",
			steps: []Step{
				{Level: 1, Name: "empty"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.steps...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRegistry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStepsAbove(t *testing.T) {
	reg, err := NewRegistry(
		Step{Level: 1, Name: "one", Ops: []Operation{noopOp("a")}},
		Step{Level: 2, Name: "two", Ops: []Operation{noopOp("b")}},
		Step{Level: 3, Name: "three", Ops: []Operation{noopOp("c")}},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		level      int
		wantLevels []int
	}{
		{0, []int{1, 2, 3}},
		{1, []int{2, 3}},
		{2, []int{3}},
		{3, nil},
		{7, nil},
		{-1, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		steps := reg.StepsAbove(tt.level)
		if len(steps) != len(tt.wantLevels) {
			t.Errorf("StepsAbove(%d) returned %d steps, want %d", tt.level, len(steps), len(tt.wantLevels))
			continue
		}
		for i, step := range steps {
			if step.Level != tt.wantLevels[i] {
				t.Errorf("StepsAbove(%d)[%d].Level = %d, want %d", tt.level, i, step.Level, tt.wantLevels[i])
			}
		}
	}
}

func TestMaxLevel(t *testing.T) {
	empty, _ := NewRegistry()
	if got := empty.MaxLevel(); got != 0 {
		t.Errorf("empty registry MaxLevel() = %d, want 0", got)
	}

	if got := DefaultRegistry().MaxLevel(); got != 2 {
		t.Errorf("DefaultRegistry().MaxLevel() = %d, want 2", got)
	}
}

func TestStepsAreGaplessFromOne(t *testing.T) {
	// The shipped chain must satisfy its own registry validation.
	steps := Steps()
	for i, step := range steps {
		if step.Level != i+1 {
			t.Errorf("Steps()[%d].Level = %d, want %d", i, step.Level, i+1)
		}
		if len(step.Ops) == 0 {
			t.Errorf("Steps()[%d] (%s) has no operations", i, step.Name)
		}
	}
}
