package session

import (
	"sort"

	"liveshop/entities"
)

// ProjectProducts derives the buyer-visible product list from raw inventory
// and the current session state. Giveaway items are surfaced through a
// separate flow and never appear here.
func ProjectProducts(products []entities.ShowProduct, state entities.SessionState) []entities.VisibleProduct {
	if !state.CanShowProducts {
		return nil
	}

	visible := make([]entities.VisibleProduct, 0, len(products))
	for _, p := range products {
		if p.IsGiveaway || !p.IsAvailable || p.Quantity <= 0 {
			continue
		}

		visible = append(visible, entities.VisibleProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
			BoxNumber: p.BoxNumber,
		})
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].BoxNumber < visible[j].BoxNumber
	})

	return visible
}
