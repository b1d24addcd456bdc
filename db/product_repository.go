package db

import (
	"context"
	"fmt"

	"liveshop/entities"

	"github.com/google/uuid"
)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) ProductRepository {
	if db == nil {
		panic("db is nil")
	}
	return ProductRepository{
		db: db,
	}
}

func (r ProductRepository) Create(ctx context.Context, product entities.ShowProduct) (entities.ProductCreateResponse, error) {
	var productID uuid.UUID

	err := r.db.Conn.QueryRowContext(
		ctx,
		`
		INSERT INTO show_products (show_id, name, price_amount, price_currency, quantity, box_number, is_available, is_giveaway)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING product_id`,
		product.ShowID, product.Name, product.Price.Amount, product.Price.Currency,
		product.Quantity, product.BoxNumber, product.IsAvailable, product.IsGiveaway,
	).Scan(&productID)

	if err != nil {
		return entities.ProductCreateResponse{}, fmt.Errorf("could not save product: %w", err)
	}

	return entities.ProductCreateResponse{ProductID: productID}, nil
}

func (r ProductRepository) ByID(ctx context.Context, productID uuid.UUID) (entities.ShowProduct, error) {
	var product entities.ShowProduct
	err := r.db.Conn.GetContext(ctx, &product, `
		SELECT
			product_id,
			show_id,
			name,
			price_amount AS "price.amount",
			price_currency AS "price.currency",
			quantity,
			box_number,
			is_available,
			is_giveaway
		FROM
			show_products
		WHERE
			product_id = $1
	`, productID)
	if err != nil {
		return entities.ShowProduct{}, fmt.Errorf("could not get product: %w", err)
	}

	return product, nil
}

func (r ProductRepository) ByShow(ctx context.Context, showID uuid.UUID) ([]entities.ShowProduct, error) {
	var products []entities.ShowProduct
	err := r.db.Conn.SelectContext(ctx, &products, `
		SELECT
			product_id,
			show_id,
			name,
			price_amount AS "price.amount",
			price_currency AS "price.currency",
			quantity,
			box_number,
			is_available,
			is_giveaway
		FROM
			show_products
		WHERE
			show_id = $1
		ORDER BY
			box_number
	`, showID)
	if err != nil {
		return nil, fmt.Errorf("could not list products for show %s: %w", showID, err)
	}

	return products, nil
}
