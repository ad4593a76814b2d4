// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParametersAreValid(t *testing.T) {
	require.NoError(t, DefaultParameters.Valid())
}

func TestQuorumMath(t *testing.T) {
	// spec.md §8: n=4, f=1, q=3 boundary case.
	p := DefaultParameters
	p.N = 4
	require.Equal(t, 1, p.F())
	require.Equal(t, 3, p.Quorum())

	p.N = 7
	require.Equal(t, 2, p.F())
	require.Equal(t, 5, p.Quorum())
}

func TestValidRejectsTooFewValidators(t *testing.T) {
	p := DefaultParameters
	p.N = 3
	require.Error(t, p.Valid())
}

func TestValidRejectsTooManyValidators(t *testing.T) {
	p := DefaultParameters
	p.N = 65
	require.Error(t, p.Valid())
}

func TestValidRejectsInvertedThresholds(t *testing.T) {
	p := DefaultParameters
	p.HardTriggerThreshold = p.HighDriftThreshold
	require.Error(t, p.Valid())
}

func TestValidRejectsOversizedHighDriftBatch(t *testing.T) {
	p := DefaultParameters
	p.HighDriftBatchSize = p.NormalBatchSize + 1
	require.Error(t, p.Valid())
}
