package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalOrders     int64 `db:"total_orders" json:"totalOrders"`
	PendingOrders   int64 `db:"pending_orders" json:"pendingOrders"`
	PaidOrders      int64 `db:"paid_orders" json:"paidOrders"`
	CancelledOrders int64 `db:"cancelled_orders" json:"cancelledOrders"`
	TotalRevenue    int64 `db:"total_revenue" json:"totalRevenue"`
	TodayOrders     int64 `db:"today_orders" json:"todayOrders"`
	TodayRevenue    int64 `db:"today_revenue" json:"todayRevenue"`
	StockAvailable  int64 `db:"stock_available" json:"stockAvailable"`
	StockSold       int64 `db:"stock_sold" json:"stockSold"`
}

// RevenuePoint is one day in the revenue chart.
type RevenuePoint struct {
	Day     time.Time `db:"day" json:"day"`
	Orders  int64     `db:"orders" json:"orders"`
	Revenue int64     `db:"revenue" json:"revenue"`
}

// StatsRepository answers reporting queries. It runs raw SQL over a separate
// sqlx connection; the aggregate queries have no business on the ORM.
type StatsRepository interface {
	Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error)
	RevenueByDay(ctx context.Context, days int) ([]RevenuePoint, error)
}

type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository opens a reporting connection with the pgx stdlib driver.
func NewStatsRepository(dsn string) (StatsRepository, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	return &statsRepository{db: db}, nil
}

// NewStatsRepositoryWithDB wraps an existing connection; used in tests.
func NewStatsRepositoryWithDB(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

const dashboardQuery = `
SELECT
    COUNT(*)                                                            AS total_orders,
    COUNT(*) FILTER (WHERE payment_status = 'pending')                  AS pending_orders,
    COUNT(*) FILTER (WHERE payment_status = 'paid')                     AS paid_orders,
    COUNT(*) FILTER (WHERE payment_status = 'cancelled')                AS cancelled_orders,
    COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0) AS total_revenue,
    COUNT(*) FILTER (WHERE created_at >= $1)                            AS today_orders,
    COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid' AND paid_at >= $1), 0) AS today_revenue
FROM orders`

const stockQuery = `
SELECT
    COUNT(*) FILTER (WHERE status = 'available') AS stock_available,
    COUNT(*) FILTER (WHERE status = 'sold')      AS stock_sold
FROM stock_entries`

func (r *statsRepository) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats DashboardStats
	if err := r.db.GetContext(ctx, &stats, dashboardQuery, startOfDay); err != nil {
		return nil, err
	}

	var stock struct {
		StockAvailable int64 `db:"stock_available"`
		StockSold      int64 `db:"stock_sold"`
	}
	if err := r.db.GetContext(ctx, &stock, stockQuery); err != nil {
		return nil, err
	}
	stats.StockAvailable = stock.StockAvailable
	stats.StockSold = stock.StockSold
	return &stats, nil
}

const revenueQuery = `
SELECT
    date_trunc('day', paid_at)        AS day,
    COUNT(*)                          AS orders,
    COALESCE(SUM(total_amount), 0)    AS revenue
FROM orders
WHERE payment_status = 'paid'
  AND paid_at >= NOW() - ($1 || ' days')::interval
GROUP BY 1
ORDER BY 1`

func (r *statsRepository) RevenueByDay(ctx context.Context, days int) ([]RevenuePoint, error) {
	var points []RevenuePoint
	if err := r.db.SelectContext(ctx, &points, revenueQuery, days); err != nil {
		return nil, err
	}
	return points, nil
}
