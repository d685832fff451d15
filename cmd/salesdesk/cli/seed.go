package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/masterdata/customers"
	"github.com/salesdesk/salesdesk/internal/masterdata/items"
	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/sales"
	"github.com/salesdesk/salesdesk/internal/shared"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data and an admin account",
	Long: `Load a handful of customers, items and sales for the current year, plus
an admin account that can sign in. Master data is skipped when customers
already exist; the admin account is skipped when its email is taken.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("admin-email", "admin@salesdesk.local", "Email of the seeded admin account")
	seedCmd.Flags().String("admin-password", "admin123", "Password of the seeded admin account")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("admin-email")
	password, _ := cmd.Flags().GetString("admin-password")

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	pool, err := db.New(ctx, env.cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	s := &seeder{
		customers: customers.NewRepository(pool),
		items:     items.NewRepository(pool),
		sales:     sales.NewService(sales.NewRepository(pool), shared.NopNotifier{}),
		users:     auth.NewService(auth.NewRepository(pool), nil, nil),
		logger:    env.logger,
		now:       time.Now,
	}
	summary, err := s.run(ctx, email, password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d customers, %d items, %d sales, admin created: %t\n",
		summary.Customers, summary.Items, summary.Sales, summary.AdminCreated)
	return err
}

type saleCreator interface {
	Create(ctx context.Context, req sales.SaleRequest) (sales.DocRef, error)
}

type userRegistrar interface {
	Register(ctx context.Context, email, password, fullName string) (*auth.User, error)
}

type seedSummary struct {
	Customers    int
	Items        int
	Sales        int
	AdminCreated bool
}

type seeder struct {
	customers customers.Repository
	items     items.Repository
	sales     saleCreator
	users     userRegistrar
	logger    *slog.Logger
	now       func() time.Time
}

var (
	seedCustomers = []string{"Toko Sinar Jaya", "CV Maju Bersama", "PT Nusantara Retail", "Warung Bu Sri"}
	seedItems     = []struct {
		name  string
		price string
	}{
		{"Beras Premium 5kg", "72500"},
		{"Minyak Goreng 2L", "36000"},
		{"Gula Pasir 1kg", "17500"},
		{"Kopi Bubuk 250g", "24000.50"},
		{"Teh Celup 25s", "8500"},
	}
)

func (s *seeder) run(ctx context.Context, email, password string) (seedSummary, error) {
	var summary seedSummary

	_, total, err := s.customers.List(ctx, 1, 0)
	if err != nil {
		return summary, fmt.Errorf("count customers: %w", err)
	}
	if total > 0 {
		s.logger.Info("master data present, skipping demo data", slog.Int("customers", total))
	} else if summary, err = s.masterData(ctx); err != nil {
		return summary, err
	}

	if _, err := s.users.Register(ctx, email, password, "Administrator"); err != nil {
		if !errors.Is(err, auth.ErrEmailTaken) {
			return summary, fmt.Errorf("register admin: %w", err)
		}
		s.logger.Info("admin account exists", slog.String("email", email))
	} else {
		summary.AdminCreated = true
	}
	return summary, nil
}

func (s *seeder) masterData(ctx context.Context) (seedSummary, error) {
	var summary seedSummary

	customerIDs := make([]int64, 0, len(seedCustomers))
	for _, name := range seedCustomers {
		c, err := s.customers.Create(ctx, name)
		if err != nil {
			return summary, fmt.Errorf("create customer %q: %w", name, err)
		}
		customerIDs = append(customerIDs, c.CustomerID)
		summary.Customers++
	}

	lines := make([]sales.LineInput, 0, len(seedItems))
	for _, it := range seedItems {
		created, err := s.items.Create(ctx, it.name)
		if err != nil {
			return summary, fmt.Errorf("create item %q: %w", it.name, err)
		}
		price := decimal.RequireFromString(it.price)
		lines = append(lines, sales.LineInput{ItemID: created.ItemID, UnitPrice: &price})
		summary.Items++
	}

	// One sale per month so far this year, rotating customers and items.
	now := s.now()
	for m := time.January; m <= now.Month(); m++ {
		i := int(m) - 1
		req := sales.SaleRequest{
			DocDate:    time.Date(now.Year(), m, 1+i%27, 0, 0, 0, 0, time.UTC).Format(shared.DateLayout),
			CustomerID: customerIDs[i%len(customerIDs)],
			Items: []sales.LineInput{
				withQty(lines[i%len(lines)], 1+i%4),
				withQty(lines[(i+2)%len(lines)], 2+i%3),
			},
		}
		if _, err := s.sales.Create(ctx, req); err != nil {
			return summary, fmt.Errorf("create sale for %s: %w", m, err)
		}
		summary.Sales++
	}
	return summary, nil
}

func withQty(line sales.LineInput, qty int) sales.LineInput {
	line.Qty = qty
	return line
}
