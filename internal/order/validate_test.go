package order

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/models"
)

func TestValidateSelections(t *testing.T) {
	tests := []struct {
		name       string
		selections []Selection
		wantErr    bool
	}{
		{
			name: "valid selections",
			selections: []Selection{
				{Product: product("Burger", "5"), Quantity: 2},
				{Product: product("Gratis Bread", "0"), Quantity: 1},
			},
			wantErr: false,
		},
		{
			name:       "empty list is valid",
			selections: nil,
			wantErr:    false,
		},
		{
			name: "empty product name",
			selections: []Selection{
				{Product: models.Product{Price: decimal.NewFromInt(5)}, Quantity: 1},
			},
			wantErr: true,
		},
		{
			name: "negative price",
			selections: []Selection{
				{Product: product("Burger", "-1"), Quantity: 1},
			},
			wantErr: true,
		},
		{
			name: "non-positive quantity",
			selections: []Selection{
				{Product: product("Burger", "5"), Quantity: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelections(tt.selections)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSelection) {
					t.Errorf("error = %v, want ErrInvalidSelection", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
