package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDistinguishesAbsentFromNull(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"category_id": null}`, wantSet: true},
		{name: "value", body: `{"category_id": "abc"}`, wantSet: true, wantValue: strPtr("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateLeadRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.wantSet, req.CategoryID.Set)
			assert.Equal(t, tt.wantValue, req.CategoryID.Value)
		})
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var req SalesRecordRequest
	err := json.Unmarshal([]byte(`{"est_payout": "lots"}`), &req)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
