package db

import (
	"context"
	"time"

	"trizzaone/internal/types"
)

// noCommentPlaceholder fills the comment field for orders submitted without
// one, so downstream consumers never see an empty string.
const noCommentPlaceholder = "No comment"

// OrderRepository provides data access for the food_orders table backing the
// dashboard's order history and leaderboard views.
type OrderRepository struct {
	db DBTX
}

// NewOrderRepository creates an OrderRepository backed by the given database
// connection (pool or transaction).
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert persists one order. Optional fields are defaulted rather than
// rejected: a missing rating becomes 0 and a missing comment becomes the
// placeholder text.
func (r *OrderRepository) Insert(ctx context.Context, o types.Order) error {
	comment := o.Comment
	if comment == "" {
		comment = noCommentPlaceholder
	}
	rating := o.Rating
	if rating < 0 {
		rating = 0
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO food_orders (id, dish_name, quantity, rating, comment, ordered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		o.ID,
		o.DishName,
		o.Quantity,
		rating,
		comment,
		o.OrderedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert order", err)
	}
	return nil
}

// ListRecent returns the newest orders, newest first, bounded by limit.
func (r *OrderRepository) ListRecent(ctx context.Context, limit int) ([]types.Order, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, dish_name, quantity, rating, comment, ordered_at
		 FROM food_orders
		 ORDER BY ordered_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list orders", err)
	}
	defer rows.Close()

	var results []types.Order
	for rows.Next() {
		var o types.Order
		if scanErr := rows.Scan(&o.ID, &o.DishName, &o.Quantity, &o.Rating, &o.Comment, &o.OrderedAt); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan order row", scanErr)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating order rows", err)
	}

	return results, nil
}

// QuantityBetween sums the ordered quantity in the half-open interval
// [from, to). Missing rows sum to zero.
func (r *OrderRepository) QuantityBetween(ctx context.Context, from, to time.Time) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM food_orders
		 WHERE ordered_at >= $1 AND ordered_at < $2`,
		from, to,
	).Scan(&total)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to sum order quantities", err)
	}
	return total, nil
}

// LeaderboardToday returns dishes ordered since local midnight UTC, ranked by
// summed quantity descending. Ties break alphabetically so the ranking is
// deterministic.
func (r *OrderRepository) LeaderboardToday(ctx context.Context) ([]types.DishCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT dish_name, SUM(quantity) AS total
		 FROM food_orders
		 WHERE ordered_at >= date_trunc('day', NOW() AT TIME ZONE 'utc')
		 GROUP BY dish_name
		 ORDER BY total DESC, dish_name ASC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to compute leaderboard", err)
	}
	defer rows.Close()

	var results []types.DishCount
	for rows.Next() {
		var dc types.DishCount
		if scanErr := rows.Scan(&dc.DishName, &dc.Quantity); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan leaderboard row", scanErr)
		}
		results = append(results, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating leaderboard rows", err)
	}

	return results, nil
}
