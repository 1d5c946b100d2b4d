package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/order_service/internal/domain"
)

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    domain.OrderStatus
		wantErr bool
	}{
		{"PENDING", domain.StatusPending, false},
		{"PAID", domain.StatusPaid, false},
		{" SHIPPED ", domain.StatusShipped, false},
		{"CANCELED", domain.StatusCanceled, false},
		{"paid", "", true},
		{"", "", true},
		{"DELIVERED", "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := domain.ParseOrderStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidStatus) {
					t.Fatalf("want ErrInvalidStatus, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %q err=%v, want %q", got, err, tt.want)
			}
		})
	}
}

func TestItems_KeepsKeyOrder(t *testing.T) {
	t.Parallel()

	raw := `{"z":1,"a":{"nested":true},"m":"x"}`
	o := domain.Order{
		ID:         uuid.New(),
		UserID:     7,
		Items:      domain.Items(raw),
		TotalPrice: 12.5,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"items":`+raw) {
		t.Fatalf("items must be embedded verbatim, got %s", b)
	}

	var back domain.Order
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(back.Items) != raw {
		t.Fatalf("items changed: got %s want %s", back.Items, raw)
	}
}

func TestItems_CompactsWhitespace(t *testing.T) {
	t.Parallel()

	var in domain.OrderInput
	if err := json.Unmarshal([]byte(`{"items": { "b" : 1,  "a": [1, 2] }, "total_price": 3}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(in.Items) != `{"b":1,"a":[1,2]}` {
		t.Fatalf("items not compacted: %s", in.Items)
	}
}

func TestItems_RejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`[1,2]`, `"str"`, `42`, `{"broken":`} {
		var it domain.Items
		if err := json.Unmarshal([]byte(`{"items":`+in+`}`), &struct {
			Items *domain.Items `json:"items"`
		}{Items: &it}); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}

func TestItems_RejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	var it domain.Items
	err := it.UnmarshalJSON([]byte("{\"sku\":\"\xff\"}"))
	if !errors.Is(err, domain.ErrItemsNotObject) {
		t.Fatalf("want ErrItemsNotObject, got %v", err)
	}
}

func TestItems_EmptyMarshalsAsObject(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(domain.OrderInput{TotalPrice: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"items":{}`) {
		t.Fatalf("empty items must marshal as {}, got %s", b)
	}
}

func TestOrderCacheKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6f1c1a52-6b0e-4a8e-9d4c-2d9b8f0e4b11")
	if got := domain.OrderCacheKey(id); got != "order:6f1c1a52-6b0e-4a8e-9d4c-2d9b8f0e4b11" {
		t.Fatalf("unexpected key %q", got)
	}
}
