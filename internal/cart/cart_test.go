package cart

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/suoapvs/alexcoffee/internal/models"
)

func position(productID int64, price float64, number int) models.SalePosition {
	return models.SalePosition{
		Product: models.Product{ID: productID, Title: "product", Price: price},
		Number:  number,
	}
}

func TestEmptyCart(t *testing.T) {
	c := New()

	if got := c.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if got := c.Price(); got != 0 {
		t.Errorf("Price() = %f, want 0", got)
	}
	if got := c.Lines(); got != 0 {
		t.Errorf("Lines() = %d, want 0", got)
	}
	if got := c.SalePositions(); len(got) != 0 {
		t.Errorf("SalePositions() has %d elements, want 0", len(got))
	}
}

func TestAddSalePosition(t *testing.T) {
	c := New()
	p := position(1, 40, 3)
	c.AddSalePosition(&p)

	if got := c.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
	if got := c.Lines(); got != 1 {
		t.Errorf("Lines() = %d, want 1", got)
	}
	if got := c.Price(); got != 120 {
		t.Errorf("Price() = %f, want 120", got)
	}
}

func TestAddSalePositionIgnoresNilAndZeroProduct(t *testing.T) {
	c := New()
	c.AddSalePosition(nil)
	empty := models.SalePosition{Number: 5}
	c.AddSalePosition(&empty)

	if got := c.Lines(); got != 0 {
		t.Errorf("Lines() = %d, want 0", got)
	}
}

func TestAddSameProductMergesLine(t *testing.T) {
	c := New()
	first := position(1, 40, 2)
	c.AddSalePosition(&first)

	// The incoming quantity of a merged add is ignored, only the
	// existing line is bumped by one.
	again := position(1, 40, 7)
	c.AddSalePosition(&again)

	if got := c.Lines(); got != 1 {
		t.Fatalf("Lines() = %d, want 1", got)
	}
	if got := c.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}

func TestAddDistinctProducts(t *testing.T) {
	c := New()
	first := position(1, 40, 1)
	second := position(2, 55, 2)
	c.AddSalePosition(&first)
	c.AddSalePosition(&second)

	if got := c.Lines(); got != 2 {
		t.Errorf("Lines() = %d, want 2", got)
	}
	if got := c.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
	if got := c.Price(); got != 150 {
		t.Errorf("Price() = %f, want 150", got)
	}
}

func TestAddSalePositionsMergesBatch(t *testing.T) {
	c := New()
	c.AddSalePositions([]models.SalePosition{
		position(1, 40, 1),
		position(2, 55, 1),
		position(1, 40, 1),
		{Number: 3}, // no product, skipped
	})

	if got := c.Lines(); got != 2 {
		t.Errorf("Lines() = %d, want 2", got)
	}
	if got := c.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}

func TestRemoveProduct(t *testing.T) {
	c := New()
	first := position(1, 40, 2)
	second := position(2, 55, 1)
	c.AddSalePosition(&first)
	c.AddSalePosition(&second)

	c.RemoveProduct(1)
	if got := c.Lines(); got != 1 {
		t.Fatalf("Lines() = %d, want 1", got)
	}
	if got := c.Price(); got != 55 {
		t.Errorf("Price() = %f, want 55", got)
	}

	// Removing an absent product is a no-op.
	c.RemoveProduct(99)
	if got := c.Lines(); got != 1 {
		t.Errorf("Lines() after absent remove = %d, want 1", got)
	}
}

func TestRemoveSalePositions(t *testing.T) {
	c := New()
	c.AddSalePositions([]models.SalePosition{
		position(1, 40, 1),
		position(2, 55, 1),
		position(3, 10, 1),
	})

	c.RemoveSalePositions([]models.SalePosition{position(1, 40, 1), position(3, 10, 1)})

	if got := c.Lines(); got != 1 {
		t.Fatalf("Lines() = %d, want 1", got)
	}
	if got := c.SalePositions()[0].Product.ID; got != 2 {
		t.Errorf("remaining product ID = %d, want 2", got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	c := New()
	p := position(1, 40, 2)
	c.AddSalePosition(&p)

	c.Clear()
	c.Clear()

	if got := c.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if got := c.Price(); got != 0 {
		t.Errorf("Price() = %f, want 0", got)
	}
}

func TestSetSalePositionsReplacesContents(t *testing.T) {
	c := New()
	old := position(1, 40, 2)
	c.AddSalePosition(&old)

	c.SetSalePositions([]models.SalePosition{
		position(2, 55, 1),
		position(2, 55, 1),
		position(3, 10, 2),
	})

	if got := c.Lines(); got != 2 {
		t.Fatalf("Lines() = %d, want 2", got)
	}
	if got := c.Size(); got != 4 {
		t.Errorf("Size() = %d, want 4", got)
	}
	for _, sp := range c.SalePositions() {
		if sp.Product.ID == 1 {
			t.Error("SetSalePositions kept an old line")
		}
	}
}

func TestSetSalePositionsRoundTrip(t *testing.T) {
	c := New()
	c.AddSalePositions([]models.SalePosition{
		position(1, 40, 2),
		position(2, 55, 1),
	})

	c.SetSalePositions(c.SalePositions())

	if got := c.Lines(); got != 2 {
		t.Errorf("Lines() = %d after round trip, want 2", got)
	}
	if got := c.Size(); got != 3 {
		t.Errorf("Size() = %d after round trip, want 3", got)
	}
	if got := c.Price(); got != 135 {
		t.Errorf("Price() = %f after round trip, want 135", got)
	}
}

func TestSalePositionsReturnsSnapshot(t *testing.T) {
	c := New()
	p := position(1, 40, 2)
	c.AddSalePosition(&p)

	snapshot := c.SalePositions()
	snapshot[0].Number = 99
	snapshot[0].Product.Price = 0

	if got := c.Size(); got != 2 {
		t.Errorf("Size() = %d after mutating snapshot, want 2", got)
	}
	if got := c.Price(); got != 80 {
		t.Errorf("Price() = %f after mutating snapshot, want 80", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := New()
	c.AddSalePositions([]models.SalePosition{
		position(1, 40, 2),
		position(2, 55, 1),
	})

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	restored := New()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got := restored.Size(); got != c.Size() {
		t.Errorf("restored Size() = %d, want %d", got, c.Size())
	}
	if got := restored.Price(); got != c.Price() {
		t.Errorf("restored Price() = %f, want %f", got, c.Price())
	}
}

func TestConcurrentAdds(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := position(1, 40, 1)
			c.AddSalePosition(&p)
		}()
	}
	wg.Wait()

	if got := c.Lines(); got != 1 {
		t.Errorf("Lines() = %d after concurrent adds of one product, want 1", got)
	}
	if got := c.Size(); got != 50 {
		t.Errorf("Size() = %d, want 50", got)
	}
}
