package cart

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  decimal.NewFromInt(price),
		Images: []string{id + ".jpg"},
	}
}

func TestAddItem_NewLine(t *testing.T) {
	s := NewStore()
	line := s.AddItem(product("A", 500), 1)

	assert.Equal(t, "A", line.ID)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "A.jpg", line.ImageRef)
	assert.True(t, decimal.NewFromInt(500).Equal(s.Subtotal()))
}

func TestAddItem_ClampsNewLine(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 1, s.AddItem(product("A", 1), 0).Quantity)
	assert.Equal(t, 1, s.AddItem(product("B", 1), -4).Quantity)
	assert.Equal(t, MaxQuantity, s.AddItem(product("C", 1), 25).Quantity)
}

func TestAddItem_MergesById(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	line := s.AddItem(product("A", 500), 2)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, decimal.NewFromInt(1500).Equal(s.Subtotal()))
}

func TestAddItem_MergeCapsAtCeiling(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 10), 7)
	line := s.AddItem(product("A", 10), 6)
	assert.Equal(t, 10, line.Quantity)
}

func TestAddItem_MergeRefreshesDisplayFields(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)

	fresh := product("A", 450)
	fresh.Name = "Renamed"
	fresh.Images = []string{"new.jpg"}
	s.AddItem(fresh, 1)

	line, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, "Renamed", line.Name)
	assert.Equal(t, "new.jpg", line.ImageRef)
	assert.True(t, decimal.NewFromInt(450).Equal(line.UnitPrice))
	assert.Equal(t, 2, line.Quantity)
}

func TestAddItem_CustomCeiling(t *testing.T) {
	s := NewStore(WithMaxQuantity(3))
	s.AddItem(product("A", 1), 2)
	assert.Equal(t, 3, s.AddItem(product("A", 1), 2).Quantity)
	assert.Equal(t, 3, s.MaxQuantity())
}

func TestAddItem_UniquenessUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewStore()
	for i := 0; i < 500; i++ {
		id := strconv.Itoa(rng.Intn(8))
		s.AddItem(product(id, int64(rng.Intn(1000))), rng.Intn(12)-1)
	}

	seen := make(map[string]bool)
	for _, item := range s.Items() {
		assert.False(t, seen[item.ID], "duplicate line for %s", item.ID)
		seen[item.ID] = true
		assert.GreaterOrEqual(t, item.Quantity, 1)
		assert.LessOrEqual(t, item.Quantity, MaxQuantity)
	}
}

func TestRemoveItem_Idempotent(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	s.AddItem(product("B", 250), 1)

	assert.True(t, s.RemoveItem("A"))
	after := s.Items()
	assert.False(t, s.RemoveItem("A"))
	assert.Equal(t, after, s.Items())
	assert.False(t, s.RemoveItem("missing"))
}

func TestSetQuantity(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)

	require.NoError(t, s.SetQuantity("A", 4))
	line, _ := s.Get("A")
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 4, s.TotalItemCount())
}

func TestSetQuantity_ZeroEqualsRemove(t *testing.T) {
	a := NewStore()
	b := NewStore()
	for _, s := range []*Store{a, b} {
		s.AddItem(product("A", 500), 2)
		s.AddItem(product("B", 250), 1)
	}

	require.NoError(t, a.SetQuantity("A", 0))
	b.RemoveItem("A")
	assert.Equal(t, b.Items(), a.Items())

	// zero on a missing id is still a no-op
	assert.NoError(t, a.SetQuantity("A", 0))
}

func TestSetQuantity_OutOfRange(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 2)

	err := s.SetQuantity("A", 11)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	var qe *QuantityError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 11, qe.Quantity)
	assert.Equal(t, 10, qe.Max)

	assert.ErrorIs(t, s.SetQuantity("A", -1), ErrInvalidQuantity)

	line, _ := s.Get("A")
	assert.Equal(t, 2, line.Quantity)
}

func TestSetQuantity_UnknownItem(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.SetQuantity("nope", 3), ErrItemNotFound)
}

func TestToggleGift(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)

	gift, err := s.ToggleGift("A")
	require.NoError(t, err)
	assert.True(t, gift)

	// survives merge and quantity edits
	s.AddItem(product("A", 500), 1)
	require.NoError(t, s.SetQuantity("A", 5))
	line, _ := s.Get("A")
	assert.True(t, line.Gift)

	_, err = s.ToggleGift("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	s.AddItem(product("B", 250), 2)
	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.True(t, s.Subtotal().IsZero())
	assert.Equal(t, 0, s.TotalItemCount())
}

func TestRemovePaid_UnchangedCartEndsEmpty(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	s.AddItem(product("B", 250), 2)

	s.RemovePaid(s.Items())
	assert.True(t, s.IsEmpty())
}

func TestRemovePaid_KeepsLinesAddedAfterPayment(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	s.AddItem(product("B", 250), 2)
	paid := s.Items()

	s.AddItem(product("A", 500), 2)
	s.AddItem(product("C", 3000), 1)
	s.RemoveItem("B")

	var notified []int
	s.Subscribe(func(snap Snapshot) { notified = append(notified, snap.Count) })
	s.RemovePaid(paid)

	require.Equal(t, 2, s.Len())
	a, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, 2, a.Quantity)
	_, ok = s.Get("C")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(4000).Equal(s.Subtotal()))
	assert.Equal(t, []int{3}, notified)
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)

	items := s.Items()
	items[0].Quantity = 9

	line, _ := s.Get("A")
	assert.Equal(t, 1, line.Quantity)
}

func TestScenario_AddMergeZero(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	assert.True(t, decimal.NewFromInt(500).Equal(s.Subtotal()))

	s.AddItem(product("A", 500), 2)
	line, _ := s.Get("A")
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, decimal.NewFromInt(1500).Equal(s.Subtotal()))

	require.NoError(t, s.SetQuantity("A", 0))
	assert.True(t, s.IsEmpty())
}

func TestScenario_TwoProducts(t *testing.T) {
	s := NewStore()
	s.AddItem(product("A", 500), 1)
	s.AddItem(product("B", 250), 2)

	assert.Equal(t, 3, s.TotalItemCount())
	assert.True(t, decimal.NewFromInt(1000).Equal(s.Subtotal()))
}

func TestSubscribe_ReceivesEveryMutation(t *testing.T) {
	s := NewStore()
	var counts []int
	cancel := s.Subscribe(func(snap Snapshot) {
		counts = append(counts, snap.Count)
	})

	s.AddItem(product("A", 500), 1)
	s.AddItem(product("A", 500), 2)
	require.NoError(t, s.SetQuantity("A", 5))
	s.AddItem(product("B", 250), 1)
	s.RemoveItem("B")
	s.Clear()

	assert.Equal(t, []int{1, 3, 5, 6, 5, 0}, counts)

	cancel()
	s.AddItem(product("C", 1), 1)
	assert.Len(t, counts, 6)
}

func TestSubscribe_SnapshotCarriesSubtotal(t *testing.T) {
	s := NewStore()
	var last Snapshot
	s.Subscribe(func(snap Snapshot) { last = snap })

	s.AddItem(product("A", 500), 1)
	s.AddItem(product("B", 250), 2)

	assert.True(t, decimal.NewFromInt(1000).Equal(last.Subtotal))
	assert.Len(t, last.Items, 2)
}
