// Command promo-ingest loads promotional coupon codes from large
// gzip-compressed dump files. A code is considered genuine only when it
// appears in at least two of the three dumps; single-file codes are
// assumed to be noise. Cross-file membership is tested with bloom
// filters so the dumps never have to fit in memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/threadline/storefront/internal/repository"
)

const (
	filterCapacity = 120_000_000
	filterFPR      = 0.001
	dumpCount      = 3
	progressEvery  = 10_000_000
	minCodeLen     = 8
	maxCodeLen     = 10

	// defaultOffer applies to genuine codes without a named campaign.
	defaultOffer = 10
)

// campaignOffers maps known campaign codes to their percentage offer.
var campaignOffers = map[string]int{
	"FESTIVE10": 10,
	"WELCOME15": 15,
	"DIWALI25":  25,
	"FIFTYOFF":  50,
	"MONSOON20": 20,
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing promobaseN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("promo ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("promo ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	dumps := make([]string, dumpCount)
	for i := range dumpCount {
		dumps[i] = filepath.Join(dataDir, fmt.Sprintf("promobase%d.gz", i+1))
	}
	for _, d := range dumps {
		if _, err := os.Stat(d); err != nil {
			return errors.Wrapf(err, "check dump %s", d)
		}
	}

	slog.Info("pass 1: building bloom filters", slog.Int("dumps", dumpCount))
	filters, err := buildFilters(ctx, dumps)
	if err != nil {
		return errors.Wrap(err, "build filters")
	}

	slog.Info("pass 2: cross-checking dumps")
	codes, err := genuineCodes(ctx, dumps, filters)
	if err != nil {
		return errors.Wrap(err, "find genuine codes")
	}
	slog.Info("genuine codes found", slog.Int("count", len(codes)))
	if len(codes) == 0 {
		return nil
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return storeCodes(ctx, repository.NewMetadataRepository(pool), codes)
}

// buildFilters streams every dump concurrently, inserting each
// plausible code into that dump's bloom filter.
func buildFilters(ctx context.Context, dumps []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(dumps))

	g, ctx := errgroup.WithContext(ctx)
	for i, dump := range dumps {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(filterCapacity, filterFPR)
			var seen uint64

			err := streamDump(ctx, dump, func(code string) {
				filter.AddString(code)
				seen++
				if seen%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("dump", i+1), slog.Uint64("codes", seen))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "filter dump %d", i+1)
			}

			slog.Info("pass 1 complete", slog.Int("dump", i+1), slog.Uint64("codes", seen))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// genuineCodes re-streams each dump, testing codes against the OTHER
// dumps' filters. Per-dump presence is tracked as a bitmask; codes with
// two or more bits set survive.
func genuineCodes(ctx context.Context, dumps []string, filters []*bloom.BloomFilter) ([]string, error) {
	partial := make([]map[string]uint, len(dumps))

	g, ctx := errgroup.WithContext(ctx)
	for i, dump := range dumps {
		g.Go(func() error {
			hits := make(map[string]uint)
			bit := uint(1) << uint(i)
			var seen uint64

			err := streamDump(ctx, dump, func(code string) {
				seen++
				if seen%progressEvery == 0 {
					slog.Info("pass 2 progress", slog.Int("dump", i+1), slog.Uint64("codes", seen))
				}
				for j, f := range filters {
					if j == i {
						continue
					}
					if f.TestString(code) {
						hits[code] |= bit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "scan dump %d", i+1)
			}

			slog.Info("pass 2 complete",
				slog.Int("dump", i+1),
				slog.Uint64("codes", seen),
				slog.Int("candidates", len(hits)),
			)
			partial[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, hits := range partial {
		for code, mask := range hits {
			merged[code] |= mask
		}
	}

	var genuine []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			genuine = append(genuine, code)
		}
	}
	return genuine, nil
}

// streamDump reads a gzip dump line by line, passing plausible codes to fn.
func streamDump(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := scanner.Text()
		if len(code) >= minCodeLen && len(code) <= maxCodeLen {
			fn(code)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// storeCodes upserts genuine codes as coupon rules.
func storeCodes(ctx context.Context, repo *repository.MetadataRepository, codes []string) error {
	slog.Info("writing coupons", slog.Int("count", len(codes)))

	for i, code := range codes {
		offer, ok := campaignOffers[code]
		if !ok {
			offer = defaultOffer
		}
		if _, err := repo.CreateCoupon(ctx, code, offer); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", code)
		}
		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
