package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyLedger(t *testing.T) {
	tests := []struct {
		name      string
		entries   []LedgerEntry
		expectErr bool
	}{
		{
			name: "Empty ledger",
		},
		{
			name: "Valid chain out of order",
			entries: []LedgerEntry{
				{UserID: 1, Version: 2, PointsChange: -400, PointsSum: 0},
				{UserID: 1, Version: 0, PointsChange: 1000, PointsSum: 1000},
				{UserID: 1, Version: 1, PointsChange: -600, PointsSum: 400},
			},
		},
		{
			name: "Opening entry with mismatching sum",
			entries: []LedgerEntry{
				{UserID: 1, Version: 0, PointsChange: 0, PointsSum: 1000},
			},
			expectErr: true,
		},
		{
			name: "Broken running sum",
			entries: []LedgerEntry{
				{UserID: 1, Version: 0, PointsChange: 1000, PointsSum: 1000},
				{UserID: 1, Version: 1, PointsChange: -600, PointsSum: 600},
			},
			expectErr: true,
		},
		{
			name: "Repeated version",
			entries: []LedgerEntry{
				{UserID: 1, Version: 0, PointsChange: 1000, PointsSum: 1000},
				{UserID: 1, Version: 1, PointsChange: -600, PointsSum: 400},
				{UserID: 1, Version: 1, PointsChange: -600, PointsSum: 400},
			},
			expectErr: true,
		},
		{
			name: "Gaps in versions are allowed",
			entries: []LedgerEntry{
				{UserID: 1, Version: 0, PointsChange: 1000, PointsSum: 1000},
				{UserID: 1, Version: 5, PointsChange: -1000, PointsSum: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyLedger(tt.entries)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReasons(t *testing.T) {
	assert.Equal(t, "orders:42:confirm", ConfirmReason(42))
	assert.Equal(t, "users:7:signup", SignupReason(7))
}
