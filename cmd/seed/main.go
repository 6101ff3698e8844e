// Command seed creates the configured seller account and, with -catalog, a starter catalog.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/repo/mongodb"
	"github.com/geocoder89/storefront/internal/repo/postgres"
)

var starterCatalog = []product.CreateProductRequest{
	{Name: "Introduction to Algorithms", Description: "CLRS, 3rd edition", Quantity: 10, Price: 89.99, Category: product.CategoryAcademics},
	{Name: "Watchmen", Description: "Graphic novel", Quantity: 25, Price: 19.99, Category: product.CategoryComic},
	{Name: "Dune", Description: "Frank Herbert", Quantity: 40, Price: 9.99, Category: product.CategoryFiction},
	{Name: "Pride and Prejudice", Description: "Jane Austen", Quantity: 30, Price: 7.5, Category: product.CategoryNovel},
	{Name: "First Edition Bookmark", Description: "Brass, numbered", Quantity: 5, Price: 45, Category: product.CategoryCollectibles},
}

type catalogWriter interface {
	Create(ctx context.Context, p product.Product) (product.Product, error)
	List(ctx context.Context, filter product.ListFilter) ([]product.Product, error)
}

func main() {
	migrations := flag.String("migrations", "migrations", "directory holding the Postgres schema")
	withCatalog := flag.Bool("catalog", false, "also insert the starter catalog when the catalog is empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		users   db.SellerStore
		catalog catalogWriter
	)

	switch cfg.StoreDriver {
	case "mongo":
		client, err := mongodb.Connect(cfg.MongoURI)
		if err != nil {
			log.Error("connect mongo", "err", err)
			os.Exit(1)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		database := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			log.Error("indexes", "err", err)
			os.Exit(1)
		}
		users = mongodb.NewUsersRepo(database, nil)
		catalog = mongodb.NewProductsRepo(database, nil)

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			log.Error("connect postgres", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, *migrations); err != nil {
			log.Error("migrate", "err", err)
			os.Exit(1)
		}
		users = postgres.NewUsersRepo(pool, nil)
		catalog = postgres.NewProductsRepo(pool, nil)

	default:
		log.Error("seeding needs a persistent store", "store", cfg.StoreDriver)
		os.Exit(1)
	}

	created, err := db.EnsureSeller(ctx, users, cfg)
	if err != nil {
		log.Error("seed seller", "err", err)
		os.Exit(1)
	}
	log.Info("seller seed", "email", cfg.SeedSellerEmail, "created", created)

	if !*withCatalog {
		return
	}

	existing, err := catalog.List(ctx, product.ListFilter{})
	if err != nil {
		log.Error("list catalog", "err", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		log.Info("catalog already populated", "products", len(existing))
		return
	}

	sellerID := ""
	if cfg.SeedSellerEmail != "" {
		if seller, err := users.GetByEmail(ctx, user.NormalizeEmail(cfg.SeedSellerEmail)); err == nil {
			sellerID = seller.ID
		}
	}

	for _, req := range starterCatalog {
		if _, err := catalog.Create(ctx, product.NewFromCreateRequest(req, sellerID)); err != nil {
			log.Error("insert product", "name", req.Name, "err", err)
			os.Exit(1)
		}
	}
	log.Info("catalog seeded", "products", len(starterCatalog))
}
