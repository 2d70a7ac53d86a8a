package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/threadline/storefront/internal/domain/auth"
	"github.com/threadline/storefront/internal/repository"
)

// catalogJSON mirrors db/seed/catalog.json. Products reference facet
// values by name; the seeder resolves names to IDs after upserting the
// facet tables.
type catalogJSON struct {
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
	Sizes      []string `json:"sizes"`
	Materials  []string `json:"materials"`
	Patterns   []string `json:"patterns"`
	Packs      []struct {
		Name   string `json:"name"`
		Number int    `json:"number"`
	} `json:"packs"`
	Discounts []struct {
		Name string          `json:"name"`
		Prop decimal.Decimal `json:"prop"`
	} `json:"discounts"`
	Coupons []struct {
		Name  string `json:"name"`
		Offer int    `json:"offer"`
	} `json:"coupons"`
	Products []productJSON `json:"products"`
}

type productJSON struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	PhotoLink   string          `json:"photoLink"`
	InStock     bool            `json:"inStock"`
	Category    string          `json:"category"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Material    string          `json:"material"`
	Pattern     string          `json:"pattern"`
	Pack        string          `json:"pack"`
	Discount    string          `json:"discount"`
	Coupon      string          `json:"coupon"`
}

func main() {
	var (
		databaseURL   string
		catalogFile   string
		adminUser     string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&adminUser, "admin-user", "admin", "admin account username")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminUser, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminUser, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}
	var cat catalogJSON
	if err := json.Unmarshal(data, &cat); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	ids := make(map[string]map[string]int64)
	for _, f := range []struct {
		table  string
		values []string
	}{
		{"categories", cat.Categories},
		{"colors", cat.Colors},
		{"sizes", cat.Sizes},
		{"materials", cat.Materials},
		{"patterns", cat.Patterns},
	} {
		ids[f.table], err = seedFacet(ctx, pool, f.table, f.values)
		if err != nil {
			return errors.Wrapf(err, "seed %s", f.table)
		}
	}

	if ids["packs"], err = seedPacks(ctx, pool, cat); err != nil {
		return errors.Wrap(err, "seed packs")
	}
	if ids["discounts"], err = seedDiscounts(ctx, pool, cat); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if ids["coupons"], err = seedCoupons(ctx, pool, cat); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	if err := seedProducts(ctx, pool, cat.Products, ids); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if adminPassword != "" {
		if err := seedAdmin(ctx, pool, adminUser, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin user")
		}
	}

	return nil
}

// seedFacet upserts facet values by name and returns name -> id.
func seedFacet(ctx context.Context, pool *pgxpool.Pool, table string, values []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(values))
	for _, name := range values {
		var id int64
		// DO UPDATE instead of DO NOTHING so RETURNING always yields the row.
		err := pool.QueryRow(ctx,
			`INSERT INTO `+table+` (name) VALUES ($1)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`, name,
		).Scan(&id)
		if err != nil {
			return nil, errors.Wrapf(err, "upsert %q", name)
		}
		ids[name] = id
	}

	slog.Info("seeded facet", slog.String("facet", table), slog.Int("count", len(values)))
	return ids, nil
}

func seedPacks(ctx context.Context, pool *pgxpool.Pool, cat catalogJSON) (map[string]int64, error) {
	ids := make(map[string]int64, len(cat.Packs))
	for _, p := range cat.Packs {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO packs (name, number) VALUES ($1, $2) RETURNING id`,
			p.Name, p.Number,
		).Scan(&id)
		if err != nil {
			return nil, errors.Wrapf(err, "insert pack %q", p.Name)
		}
		ids[p.Name] = id
	}

	slog.Info("seeded packs", slog.Int("count", len(cat.Packs)))
	return ids, nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool, cat catalogJSON) (map[string]int64, error) {
	ids := make(map[string]int64, len(cat.Discounts))
	for _, d := range cat.Discounts {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO discounts (name, prop) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET prop = EXCLUDED.prop
			 RETURNING id`, d.Name, d.Prop,
		).Scan(&id)
		if err != nil {
			return nil, errors.Wrapf(err, "upsert discount %q", d.Name)
		}
		ids[d.Name] = id
	}

	slog.Info("seeded discounts", slog.Int("count", len(cat.Discounts)))
	return ids, nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, cat catalogJSON) (map[string]int64, error) {
	repo := repository.NewMetadataRepository(pool)

	ids := make(map[string]int64, len(cat.Coupons))
	for _, c := range cat.Coupons {
		id, err := repo.CreateCoupon(ctx, c.Name, c.Offer)
		if err != nil {
			return nil, errors.Wrapf(err, "upsert coupon %q", c.Name)
		}
		ids[c.Name] = id
	}

	slog.Info("seeded coupons", slog.Int("count", len(cat.Coupons)))
	return ids, nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON, ids map[string]map[string]int64) error {
	ref := func(table, name string) (*int64, error) {
		if name == "" {
			return nil, nil
		}
		id, ok := ids[table][name]
		if !ok {
			return nil, errors.Errorf("unknown %s value %q", table, name)
		}
		return &id, nil
	}

	for _, p := range products {
		refs := make([]*int64, 0, 8)
		for _, lookup := range []struct {
			table string
			name  string
		}{
			{"categories", p.Category},
			{"colors", p.Color},
			{"sizes", p.Size},
			{"materials", p.Material},
			{"patterns", p.Pattern},
			{"packs", p.Pack},
			{"discounts", p.Discount},
			{"coupons", p.Coupon},
		} {
			r, err := ref(lookup.table, lookup.name)
			if err != nil {
				return errors.Wrapf(err, "product %q", p.Name)
			}
			refs = append(refs, r)
		}

		_, err := pool.Exec(ctx,
			`INSERT INTO products
			 (name, price, description, photo_link, in_stock,
			  category_id, color_id, size_id, material_id, pattern_id, pack_id, discount_id, coupon_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			p.Name, p.Price, p.Description, p.PhotoLink, p.InStock,
			refs[0], refs[1], refs[2], refs[3], refs[4], refs[5], refs[6], refs[7],
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}

		slog.Info("inserted product", slog.String("name", p.Name))
	}

	return nil
}

// seedAdmin registers the back-office account and grants it admin.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	users := repository.NewUserRepository(pool)
	svc := auth.NewService(users, nil)

	_, err := svc.Register(ctx, username, "", password)
	if err != nil && !errors.Is(err, auth.ErrUserExists) {
		return errors.Wrap(err, "register")
	}

	if _, err := pool.Exec(ctx,
		`UPDATE users SET admin = TRUE WHERE username = $1`, username); err != nil {
		return errors.Wrap(err, "grant admin")
	}

	slog.Info("seeded admin user", slog.String("username", username))
	return nil
}
