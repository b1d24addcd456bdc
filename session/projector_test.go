package session

import (
	"testing"

	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectProducts(t *testing.T) {
	products := []entities.ShowProduct{
		{ProductID: uuid.New(), Name: "hoodie", Quantity: 3, BoxNumber: 2, IsAvailable: true},
		{ProductID: uuid.New(), Name: "sticker pack", Quantity: 10, BoxNumber: 1, IsAvailable: true},
		{ProductID: uuid.New(), Name: "sold out cap", Quantity: 0, BoxNumber: 3, IsAvailable: true},
		{ProductID: uuid.New(), Name: "disabled mug", Quantity: 5, BoxNumber: 4, IsAvailable: false},
		{ProductID: uuid.New(), Name: "giveaway pin", Quantity: 5, BoxNumber: 5, IsAvailable: true, IsGiveaway: true},
	}

	visible := ProjectProducts(products, entities.SessionState{CanShowProducts: true})

	require.Len(t, visible, 2)

	// ordered by box number
	assert.Equal(t, "sticker pack", visible[0].Name)
	assert.Equal(t, "hoodie", visible[1].Name)
}

func TestProjectProductsHiddenOutsideSession(t *testing.T) {
	products := []entities.ShowProduct{
		{ProductID: uuid.New(), Name: "hoodie", Quantity: 3, BoxNumber: 1, IsAvailable: true},
	}

	assert.Empty(t, ProjectProducts(products, entities.SessionState{}))
}

func TestProjectProductsEmptyInventory(t *testing.T) {
	assert.Empty(t, ProjectProducts(nil, entities.SessionState{CanShowProducts: true}))
}
