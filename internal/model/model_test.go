package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationRequest_DefaultPagination(t *testing.T) {
	tests := []struct {
		name         string
		in           PaginationRequest
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"zero values", PaginationRequest{}, 1, DefaultEventPageSize, 0},
		{"explicit", PaginationRequest{Page: 3, PageSize: 50}, 3, 50, 100},
		{"negative page", PaginationRequest{Page: -2, PageSize: 10}, 1, 10, 0},
		{"page size capped", PaginationRequest{Page: 2, PageSize: 1000}, 2, MaxEventPageSize, MaxEventPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.DefaultPagination()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	t.Run("rounds total pages up", func(t *testing.T) {
		resp := NewPaginatedResponse([]string{"evt_1"}, 21, 2, 20)
		assert.Equal(t, 2, resp.TotalPages)
	})

	t.Run("empty listing renders an array", func(t *testing.T) {
		resp := NewPaginatedResponse[string](nil, 0, 1, 20)
		assert.Equal(t, 0, resp.TotalPages)

		raw, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"data":[]`)
	})

	t.Run("zero page size", func(t *testing.T) {
		resp := NewPaginatedResponse([]string{}, 5, 1, 0)
		assert.Equal(t, 0, resp.TotalPages)
	})
}

func TestErrorResponse_OmitsEmptyDetails(t *testing.T) {
	raw, err := json.Marshal(ErrorResponse{Code: "forbidden", Message: "Forbidden"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"forbidden","message":"Forbidden"}`, string(raw))
}

func TestTransactionState_IsTerminal(t *testing.T) {
	assert.False(t, TransactionStateDraft.IsTerminal())
	assert.False(t, TransactionStatePending.IsTerminal())
	assert.True(t, TransactionStateDone.IsTerminal())
	assert.True(t, TransactionStateCanceled.IsTerminal())
	assert.True(t, TransactionStateError.IsTerminal())
}
