package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"cep-distance-service/internal/adapters/cache"
	"cep-distance-service/internal/config"
	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/db"
)

const usage = `usage: dbtool <command> [flags]

commands:
  init                          create the cep_distance_cache table
  top  [-n N]                   list the N most requested lookups
  get  -from CEP -to CEP [-mode car|truck|van]
                                show one lookup without counting a hit
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	sqlDB, dialect, err := open()
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := runCommand(ctx, sqlDB, dialect, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func open() (*sql.DB, cache.Dialect, error) {
	if url := config.Get("DATABASE_URL", ""); url != "" {
		d, err := db.Open(url)
		return d, cache.Postgres, err
	}
	d, err := db.OpenSQLite(config.Get("DB_PATH", "gps_cache.db"))
	return d, cache.SQLite, err
}

func runCommand(ctx context.Context, sqlDB *sql.DB, dialect cache.Dialect, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "init":
		if err := cache.InitSchema(ctx, sqlDB, dialect); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		fmt.Fprintln(out, "Schema ready.")
		return nil

	case "top":
		fs := flag.NewFlagSet("top", flag.ContinueOnError)
		n := fs.Int("n", 20, "number of entries")
		if err := fs.Parse(args); err != nil {
			return err
		}

		entries, err := cache.NewSQLLookupCache(sqlDB, dialect).Top(ctx, *n)
		if err != nil {
			return err
		}
		printEntries(out, entries)
		return nil

	case "get":
		fs := flag.NewFlagSet("get", flag.ContinueOnError)
		from := fs.String("from", "", "origin postal code")
		to := fs.String("to", "", "destination postal code")
		vehicle := fs.String("mode", "car", "vehicle type or travel mode")
		if err := fs.Parse(args); err != nil {
			return err
		}

		mode, err := domain.ParseVehicleType(*vehicle)
		if err != nil {
			return err
		}
		key := domain.LookupKey{
			Origin:      domain.NormalizePostalCode(*from),
			Destination: domain.NormalizePostalCode(*to),
			Mode:        mode,
		}
		if !domain.ValidPostalCode(key.Origin) || !domain.ValidPostalCode(key.Destination) {
			return fmt.Errorf("invalid postal codes: from=%q to=%q", *from, *to)
		}

		e, ok, err := cache.NewSQLLookupCache(sqlDB, dialect).Peek(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "no entry for %s -> %s (%s)\n", key.Origin, key.Destination, key.Mode)
			return nil
		}
		printEntries(out, []domain.CacheEntry{e})
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func printEntries(out io.Writer, entries []domain.CacheEntry) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORIGIN\tDESTINATION\tMODE\tDISTANCE\tTIME\tHITS\tCREATED\tLAST USED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f %s\t%.2f %s\t%d\t%s\t%s\n",
			e.Key.Origin, e.Key.Destination, e.Key.Mode,
			e.Route.DistanceKm, e.DistanceUnit,
			e.Route.TimeMin, e.TimeUnit,
			e.HitCount,
			e.CreatedAt.Format(time.RFC3339), e.LastUsedAt.Format(time.RFC3339),
		)
	}
	_ = tw.Flush()
}
