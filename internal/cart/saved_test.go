package cart

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveForLater(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 3)

	require.True(t, saved.SaveForLater("A"))
	assert.True(t, c.IsEmpty())
	require.Equal(t, 1, saved.Len())
	assert.Equal(t, 3, saved.Items()[0].Quantity)
}

func TestSaveForLater_MissingIsNoop(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 1)

	assert.False(t, saved.SaveForLater("B"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, saved.Len())
}

func TestMoveToCart(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 1)
	saved.SaveForLater("A")

	line, ok := saved.MoveToCart("A")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 0, saved.Len())

	got, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, 1, got.Quantity)
}

func TestMoveToCart_ResetsQuantityToOne(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 4)
	saved.SaveForLater("A")

	line, ok := saved.MoveToCart("A")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
}

func TestMoveToCart_MergesWithExistingLine(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 1)
	saved.SaveForLater("A")

	// A comes back into the cart through the catalog
	c.AddItem(product("A", 500), 2)

	line, ok := saved.MoveToCart("A")
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 1, c.Len())
	assert.False(t, saved.Contains("A"))
}

func TestMoveToCart_DropsDuplicateSnapshots(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)

	c.AddItem(product("A", 500), 1)
	saved.SaveForLater("A")
	c.AddItem(product("A", 500), 1)
	saved.SaveForLater("A")
	require.Equal(t, 2, saved.Len())

	_, ok := saved.MoveToCart("A")
	require.True(t, ok)
	assert.Equal(t, 0, saved.Len())
	line, _ := c.Get("A")
	assert.Equal(t, 1, line.Quantity)
}

func TestMoveToCart_MissingIsNoop(t *testing.T) {
	saved := NewSavedStore(NewStore())
	_, ok := saved.MoveToCart("nope")
	assert.False(t, ok)
}

func TestSavedRemove(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 1)
	saved.SaveForLater("A")

	assert.True(t, saved.Remove("A"))
	assert.False(t, saved.Remove("A"))
	assert.True(t, c.IsEmpty())
}

func TestCartAndSavedStayDisjoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := NewStore()
	saved := NewSavedStore(c)
	for i := 0; i < 5; i++ {
		c.AddItem(product(strconv.Itoa(i), 100), 1)
	}

	for i := 0; i < 400; i++ {
		id := strconv.Itoa(rng.Intn(5))
		if rng.Intn(2) == 0 {
			saved.SaveForLater(id)
		} else {
			saved.MoveToCart(id)
		}

		for _, item := range saved.Items() {
			_, inCart := c.Get(item.ID)
			require.False(t, inCart, "id %s in both collections", item.ID)
		}
	}
}

func TestSaved_SubscriberMayReadSavedList(t *testing.T) {
	c := NewStore()
	saved := NewSavedStore(c)
	c.AddItem(product("A", 500), 2)

	var seen []int
	c.Subscribe(func(Snapshot) { seen = append(seen, saved.Len()) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		saved.SaveForLater("A")
		saved.MoveToCart("A")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("saved list operations did not return")
	}
	assert.Equal(t, []int{1, 0}, seen)
}
