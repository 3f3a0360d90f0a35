package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/repository"
)

func TestStockService_AddItem(t *testing.T) {
	tests := []struct {
		name    string
		req     AddItemRequest
		wantErr bool
	}{
		{
			name: "valid item",
			req: AddItemRequest{
				IngredientName: "flour",
				Quantity:       decimal.RequireFromString("2.5"),
				Unit:           "kilograms",
			},
		},
		{
			name: "missing name",
			req: AddItemRequest{
				Quantity: decimal.NewFromInt(1),
				Unit:     "grams",
			},
			wantErr: true,
		},
		{
			name: "zero quantity",
			req: AddItemRequest{
				IngredientName: "flour",
				Quantity:       decimal.Zero,
				Unit:           "grams",
			},
			wantErr: true,
		},
		{
			name: "unknown unit",
			req: AddItemRequest{
				IngredientName: "flour",
				Quantity:       decimal.NewFromInt(1),
				Unit:           "barrels",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewStockService(repository.NewInMemoryStockRepository())

			item, err := svc.AddItem(context.Background(), "BR1", tt.req)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStockItem) {
					t.Errorf("error = %v, want ErrInvalidStockItem", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.ID == "" {
				t.Error("item ID is empty")
			}
			if item.BranchCode != "BR1" {
				t.Errorf("branch = %s, want BR1", item.BranchCode)
			}
		})
	}
}

func TestStockService_ListItemsBranchScoped(t *testing.T) {
	svc := NewStockService(repository.NewInMemoryStockRepository())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "BR1", AddItemRequest{
		IngredientName: "flour", Quantity: decimal.NewFromInt(5), Unit: "kilograms",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, err := svc.ListItems(ctx, "BR1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].IngredientName != "flour" {
		t.Errorf("items = %v", items)
	}

	other, err := svc.ListItems(ctx, "BR2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("branch leak: %v", other)
	}
}
