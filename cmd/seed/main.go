// Command seed writes a sample gift-card catalog to the product document.
//
//	go run ./cmd/seed -path data/products.json -count 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	"github.com/utafrali/giftcard-catalog/internal/idgen"
	"github.com/utafrali/giftcard-catalog/internal/storage/filestore"
	"github.com/utafrali/giftcard-catalog/pkg/logger"
	"github.com/utafrali/giftcard-catalog/pkg/slug"
)

// ---------------------------------------------------------------------------
// Seed data
// ---------------------------------------------------------------------------

type brandEntry struct {
	Name   string
	Domain string
	Weight float64
}

var brands = []brandEntry{
	{"Amazon", "amazon.com", 0.20},
	{"Apple", "apple.com", 0.12},
	{"Google Play", "play.google.com", 0.10},
	{"Steam", "store.steampowered.com", 0.10},
	{"Netflix", "netflix.com", 0.08},
	{"Spotify", "spotify.com", 0.08},
	{"Starbucks", "starbucks.com", 0.08},
	{"IKEA", "ikea.com", 0.08},
	{"Zalando", "zalando.com", 0.08},
	{"Uber Eats", "ubereats.com", 0.04},
	{"Galeries Lafayette", "galerieslafayette.com", 0.04},
}

var voucherTypes = []string{"DIGITAL", "PHYSICAL", "VARIABLE"}

var taglines = []string{
	"The gift they actually want",
	"Delivered by email in minutes",
	"No expiry, no fees",
	"Perfect for any occasion",
	"Redeem online or in store",
}

// pickBrand selects a brand by weight.
func pickBrand(rng *rand.Rand) brandEntry {
	r := rng.Float64()
	var acc float64
	for _, b := range brands {
		acc += b.Weight
		if r < acc {
			return b
		}
	}
	return brands[len(brands)-1]
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func strPtr(s string) *string { return &s }

// generate builds count products with ids from the sequence. The first product
// gets the highest id so the catalog stays newest first.
func generate(rng *rand.Rand, ids idgen.Generator, count int) []domain.Product {
	products := make([]domain.Product, count)
	for i := count - 1; i >= 0; i-- {
		b := pickBrand(rng)
		voucher := pick(rng, voucherTypes)
		id := ids.NewID()

		p := domain.Product{
			ID:               id,
			Name:             fmt.Sprintf("%s %d", b.Name, id),
			GvtID:            int64(1000 + rng.IntN(9000)),
			ProductTagline:   pick(rng, taglines),
			ShortDescription: fmt.Sprintf("<p>%s gift card.</p>", b.Name),
			LongDescription:  fmt.Sprintf("<p>Use this card on %s. Terms apply.</p>", b.Domain),
			LogoLocation:     fmt.Sprintf("https://cdn.example.com/logos/%s.png", slug.Generate(b.Name)),
			ProductURL:       fmt.Sprintf("/gift-cards/%s-%d", slug.Generate(b.Name), id),
			VoucherTypeName:  voucher,
			OrderURL:         fmt.Sprintf("https://%s/gift-cards", b.Domain),
			ProductTitle:     b.Name + " Gift Card",
			Typename:         domain.TypenameProductInfo,
		}
		if voucher == "VARIABLE" {
			lo := 5 * (1 + rng.IntN(4))
			p.VariableDenomPriceMinAmount = strPtr(fmt.Sprintf("%d.00", lo))
			p.VariableDenomPriceMaxAmount = strPtr(fmt.Sprintf("%d.00", lo*(10+rng.IntN(40))))
		}
		products[i] = p
	}
	return products
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

func main() {
	path := flag.String("path", "data/products.json", "product document to write")
	count := flag.Int("count", 100, "number of products to generate")
	start := flag.Int64("start-id", 1, "first product id")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	force := flag.Bool("force", false, "overwrite a non-empty catalog")
	flag.Parse()

	log := logger.New("catalog-seed", "info")

	if *count < 0 {
		log.Error("count must not be negative", slog.Int("count", *count))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := filestore.New(ctx, filestore.Config{
		Path:            *path,
		CreateIfMissing: true,
	}, log, nil)
	if err != nil {
		log.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	existing, err := store.Load(ctx)
	if err != nil {
		log.Error("failed to read store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(existing) > 0 && !*force {
		log.Error("catalog is not empty, pass -force to overwrite",
			slog.String("path", store.Path()),
			slog.Int("products", len(existing)),
		)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed>>1))
	products := generate(rng, idgen.NewSequence(*start), *count)

	if err := store.Save(ctx, products); err != nil {
		log.Error("failed to write catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("catalog seeded",
		slog.String("path", store.Path()),
		slog.Int("products", len(products)),
		slog.Uint64("seed", *seed),
	)
}
