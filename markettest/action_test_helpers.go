// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package markettest provides the parameterized harness the action
// tests run on, plus a fully wired in-memory environment.
package markettest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/genesis"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/platform"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/state/statetest"
)

// NewEnv returns a market environment wired to the reference platform
// collaborators, suitable for executing actions against an
// [statetest.InMemoryStore].
func NewEnv(rules *genesis.Rules) *market.Env {
	if rules == nil {
		rules = genesis.Default()
	}
	env := &market.Env{
		Rules:      rules,
		Ledger:     platform.Ledger{},
		Treasury:   platform.Treasury{},
		Roles:      platform.Roles{},
		Intents:    platform.Intents{},
		Reputation: platform.Reputation{},
	}
	env.Assets = &platform.AssetRegistry{Env: env}
	return env
}

// ActionTest is a single parameterized test. It calls Execute on the
// action with the passed parameters and checks that all assertions
// pass.
type ActionTest struct {
	Name string

	Action market.Action

	Env       *market.Env
	State     state.Mutable
	Timestamp int64
	Actor     codec.Address
	ActionID  ids.ID

	ExpectedOutput codec.Typed
	ExpectedErr    error

	Assertion func(context.Context, *testing.T, state.Mutable)
}

// Run executes the [ActionTest] and makes sure all assertions pass.
func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		env := test.Env
		if env == nil {
			env = NewEnv(nil)
		}
		output, err := test.Action.Execute(ctx, env, test.State, test.Timestamp, test.Actor, test.ActionID)

		require.ErrorIs(err, test.ExpectedErr)
		if test.ExpectedOutput != nil {
			require.Equal(test.ExpectedOutput, output)
		}

		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}

// ActionBenchmark is a parameterized benchmark. A new state is created
// for each iteration using the provided CreateState function so runs
// never share state.
type ActionBenchmark struct {
	Name   string
	Action market.Action

	Env         *market.Env
	CreateState func() state.Mutable
	Timestamp   int64
	Actor       codec.Address
	ActionID    ids.ID

	Assertion func(context.Context, *testing.B, state.Mutable)
}

// Run executes the [ActionBenchmark] and makes sure all assertions
// pass.
func (test *ActionBenchmark) Run(ctx context.Context, b *testing.B) {
	require := require.New(b)

	env := test.Env
	if env == nil {
		env = NewEnv(nil)
	}
	states := make([]state.Mutable, b.N)
	for i := 0; i < b.N; i++ {
		states[i] = test.CreateState()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := test.Action.Execute(ctx, env, states[i], test.Timestamp, test.Actor, test.ActionID)
		require.NoError(err)
	}

	b.StopTimer()
	if test.Assertion != nil {
		for i := 0; i < b.N; i++ {
			test.Assertion(ctx, b, states[i])
		}
	}
}

// NewState is shorthand for a fresh in-memory store.
func NewState() *statetest.InMemoryStore {
	return statetest.NewInMemoryStore()
}
