package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/toddjhayden/agogsaas-planning/internal/cache"
	"github.com/toddjhayden/agogsaas-planning/internal/config"
	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/ingest"
	"github.com/toddjhayden/agogsaas-planning/internal/repository/postgres"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
	"github.com/toddjhayden/agogsaas-planning/internal/storage"
)

const dateLayout = "2006-01-02"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func scopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "tenant", Usage: "Tenant identifier", Required: true, EnvVars: []string{"PLANNING_TENANT_ID"}},
		&cli.StringFlag{Name: "facility", Usage: "Facility identifier", Required: true, EnvVars: []string{"PLANNING_FACILITY_ID"}},
		&cli.StringFlag{Name: "materials", Usage: "Comma-separated material ids (all forecastable when omitted)"},
	}
}

func parseScope(c *cli.Context) (domain.Scope, []string) {
	scope := domain.Scope{
		TenantID:   c.String("tenant"),
		FacilityID: c.String("facility"),
	}

	var materials []string
	for _, part := range strings.Split(c.String("materials"), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			materials = append(materials, trimmed)
		}
	}
	if len(materials) == 1 {
		scope.MaterialID = materials[0]
	}

	return scope, materials
}

func parseDateRange(c *cli.Context, defaultDays int) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	start := now.AddDate(0, 0, -defaultDays)
	end := now

	if raw := c.String("start"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid --start: %w", err)
		}
		start = parsed
	}
	if raw := c.String("end"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return start, end, fmt.Errorf("invalid --end: %w", err)
		}
		end = parsed
	}

	return start, end, nil
}

type app struct {
	db *postgres.DB
}

func (a *app) init(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *app) close(*cli.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *app) runBackfill(c *cli.Context) error {
	scope, _ := parseScope(c)
	start, end, err := parseDateRange(c, 365)
	if err != nil {
		return err
	}

	svc := service.NewDemandService(postgres.NewDemandHistoryRepository(a.db))
	inserted, err := svc.Backfill(c.Context, scope, start, end)
	if err != nil {
		return err
	}

	fmt.Printf("backfilled %d demand history rows\n", inserted)
	return nil
}

func (a *app) runForecast(c *cli.Context) error {
	scope, materials := parseScope(c)

	choice := domain.AlgorithmAuto
	if raw := c.String("algorithm"); raw != "" {
		parsed, ok := domain.ParseAlgorithm(raw)
		if !ok {
			return fmt.Errorf("unknown algorithm %q", raw)
		}
		choice = parsed
	}

	svc := service.NewForecastService(
		postgres.NewDemandHistoryRepository(a.db),
		postgres.NewForecastRepository(a.db),
		postgres.NewMaterialRepository(a.db),
		cache.NewNoopForecastCache(),
		config.Load().Planning,
	)

	result, err := svc.Generate(c.Context, scope, materials, c.Int("horizon"), choice)
	if err != nil {
		return err
	}

	fmt.Printf("forecast complete: %d generated, %d skipped, %d failed\n",
		len(result.Generated), len(result.Skipped), len(result.Failed))
	return nil
}

func (a *app) runRecommend(c *cli.Context) error {
	scope, materials := parseScope(c)
	cfg := config.Load()

	demandRepo := postgres.NewDemandHistoryRepository(a.db)
	inventoryRepo := postgres.NewInventoryRepository(a.db)
	materialRepo := postgres.NewMaterialRepository(a.db)

	svc := service.NewRecommendationService(
		postgres.NewForecastRepository(a.db),
		inventoryRepo,
		materialRepo,
		postgres.NewRecommendationRepository(a.db),
		service.NewSafetyStockService(demandRepo, inventoryRepo, materialRepo, cfg.Planning),
	)

	recs, err := svc.Generate(c.Context, scope, materials)
	if err != nil {
		return err
	}

	fmt.Printf("generated %d replenishment recommendations\n", len(recs))
	for _, rec := range recs {
		fmt.Printf("  %-20s %-8s qty %.0f order by %s\n",
			rec.MaterialID, rec.Urgency, rec.RecommendedQty,
			rec.RecommendedOrderDate.Format(dateLayout))
	}
	return nil
}

func (a *app) runAccuracy(c *cli.Context) error {
	scope, materials := parseScope(c)
	if scope.MaterialID == "" {
		return fmt.Errorf("accuracy requires exactly one material, got %d", len(materials))
	}

	start, end, err := parseDateRange(c, 30)
	if err != nil {
		return err
	}

	svc := service.NewAccuracyService(
		postgres.NewDemandHistoryRepository(a.db),
		postgres.NewForecastRepository(a.db),
		postgres.NewAccuracyRepository(a.db),
		postgres.NewMaterialRepository(a.db),
		config.Load().Planning,
	)

	resolved, err := svc.ResolveForecasts(c.Context, scope, start, end)
	if err != nil {
		return err
	}

	metrics, err := svc.CalculateMetrics(c.Context, scope, start, end, "DAILY")
	if err != nil {
		return err
	}

	fmt.Printf("resolved %d days; MAPE %.1f%% MAE %.2f RMSE %.2f bias %.2f (target %.1f%%, within tolerance: %t)\n",
		resolved, metrics.MAPE, metrics.MAE, metrics.RMSE, metrics.Bias,
		metrics.TargetMAPE, metrics.WithinTolerance)
	return nil
}

func (a *app) runIngest(c *cli.Context) error {
	cfg := config.Load()

	var store storage.ObjectStorage
	switch cfg.Ingest.Backend {
	case "s3":
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Ingest.Endpoint,
			AccessKey: os.Getenv("INGEST_ACCESS_KEY"),
			SecretKey: os.Getenv("INGEST_SECRET_KEY"),
			Bucket:    cfg.Ingest.Bucket,
			Region:    cfg.Ingest.Region,
			UseSSL:    true,
		})
		if err != nil {
			return err
		}
		store = client
	default:
		store = storage.NewLocalStorage(cfg.Ingest.LocalDir)
	}

	svc := ingest.NewService(store, postgres.NewTransactionRepository(a.db), cfg.Ingest)
	result, err := svc.Run(c.Context, c.String("tenant"), c.String("facility"))
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d files: %d rows parsed, %d inserted\n",
		result.Files, result.RowsParsed, result.RowsInserted)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	a := &app{}

	cliApp := &cli.App{
		Name:  "planner",
		Usage: "Demand forecasting and replenishment planning batch operations",
		Commands: []*cli.Command{
			{
				Name:  "backfill",
				Usage: "Aggregate raw consumption transactions into demand history",
				Flags: append(scopeFlags(),
					newDBURLFlag(),
					&cli.StringFlag{Name: "start", Usage: "Range start (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "end", Usage: "Range end (YYYY-MM-DD)"},
				),
				Before: a.init,
				After:  a.close,
				Action: a.runBackfill,
			},
			{
				Name:  "forecast",
				Usage: "Generate forecasts for materials",
				Flags: append(scopeFlags(),
					newDBURLFlag(),
					&cli.IntFlag{Name: "horizon", Usage: "Forecast horizon in days", Value: 30},
					&cli.StringFlag{Name: "algorithm", Usage: "auto, moving_average, exponential_smoothing or holt_winters"},
				),
				Before: a.init,
				After:  a.close,
				Action: a.runForecast,
			},
			{
				Name:   "recommend",
				Usage:  "Generate replenishment recommendations",
				Flags:  append(scopeFlags(), newDBURLFlag()),
				Before: a.init,
				After:  a.close,
				Action: a.runRecommend,
			},
			{
				Name:  "accuracy",
				Usage: "Resolve forecasts against actuals and compute accuracy metrics",
				Flags: append(scopeFlags(),
					newDBURLFlag(),
					&cli.StringFlag{Name: "start", Usage: "Period start (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "end", Usage: "Period end (YYYY-MM-DD)"},
				),
				Before: a.init,
				After:  a.close,
				Action: a.runAccuracy,
			},
			{
				Name:  "ingest",
				Usage: "Load transaction exports from object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "tenant", Usage: "Tenant identifier", Required: true, EnvVars: []string{"PLANNING_TENANT_ID"}},
					&cli.StringFlag{Name: "facility", Usage: "Facility identifier", Required: true, EnvVars: []string{"PLANNING_FACILITY_ID"}},
				},
				Before: a.init,
				After:  a.close,
				Action: a.runIngest,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
