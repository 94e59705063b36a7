package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"fleet-breakeven-service/internal/adapters/cache"
	"fleet-breakeven-service/internal/adapters/distance"
	"fleet-breakeven-service/internal/adapters/export"
	"fleet-breakeven-service/internal/adapters/manifest"
	"fleet-breakeven-service/internal/config"
	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"
	"fleet-breakeven-service/internal/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// analyzer is the batch entry point: load a carrier manifest, compare
// in-house van costs against recorded 3PL charges for one postcode area,
// and print an operational plan.
func main() {
	manifestPath := flag.String("manifest", "", "path to a CSV or XLSX delivery manifest (required)")
	area := flag.String("area", "", "postcode area to target, e.g. NW; empty prints the cluster scan only")
	depot := flag.String("depot", "", "depot postcode (default from DEPOT_POSTCODE)")
	diesel := flag.Float64("diesel", 0, "today's diesel price per litre; 0 keeps the default")
	wagePerMinute := flag.Float64("wage-per-minute", 0.29, "driver wage per minute of transit")
	depreciationPerKm := flag.Float64("depreciation-per-km", 0.05, "vehicle depreciation per km")
	poolLimit := flag.Int("pool", services.DefaultPoolLimit, "max orders considered from the manifest")
	dispatchPath := flag.String("dispatch", "", "write the driver dispatch list to this CSV when the plan is viable")
	summaryPath := flag.String("summary", "", "write the per-district comparison to this CSV")
	historyPath := flag.String("history", "", "append the run outcome to this CSV history file")
	note := flag.String("note", "", "optional note recorded with the run (e.g. driver name)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		log.Debugw("no .env file found, using environment variables")
	}

	if *manifestPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		log.Fatalw("GOOGLE_MAPS_API_KEY is required")
	}
	if *depot == "" {
		*depot = config.Get("DEPOT_POSTCODE", "NN15 6NL")
	}

	loaded, err := manifest.ReadFile(*manifestPath)
	if err != nil {
		log.Fatalw("load manifest failed", "path", *manifestPath, "err", err)
	}

	pool := loaded.Records
	if *poolLimit > 0 && len(pool) > *poolLimit {
		pool = pool[:*poolLimit]
	}
	log.Infow("manifest loaded",
		"path", *manifestPath,
		"orders", len(pool),
		"skipped", loaded.Skipped,
	)

	fmt.Printf("\nTop delivery clusters (pool of %d orders):\n", len(pool))
	printAreaStats(services.TopAreas(pool, 5))

	targetArea := domain.NormalizePostcode(*area)
	if targetArea == "" {
		return
	}

	targeted := make([]domain.DeliveryRecord, 0, len(pool))
	for _, rec := range pool {
		if domain.PostcodeArea(rec.District) == targetArea {
			targeted = append(targeted, rec)
		}
	}
	if len(targeted) == 0 {
		log.Fatalw("no orders for area in pool", "area", targetArea, "pool", len(pool))
	}

	van := domain.DefaultVanCostParameters()
	if *diesel > 0 {
		van.DieselPerLitre = *diesel
	}
	params := domain.CostModelParameters{
		FuelPerKm:         van.FuelPerKm(),
		WagePerMinute:     *wagePerMinute,
		DepreciationPerKm: *depreciationPerKm,
	}

	estimator, err := distance.NewGoogleEstimator(apiKey, *depot, log)
	if err != nil {
		log.Fatalw("create estimator failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	engine := services.NewEngine(estimator, cache.NewMemoryEstimateCache(), log)
	engine.LookupConcurrency = config.GetInt("LOOKUP_CONCURRENCY", services.DefaultLookupConcurrency)
	result, err := engine.Analyze(ctx, services.AnalyzeRequest{
		Records: targeted,
		Params:  params,
		Van:     van,
	})
	if err != nil {
		log.Fatalw("analysis failed", "err", err)
	}

	printSummaries(result)

	if *summaryPath != "" {
		if err := writeSummaries(*summaryPath, result.Summaries); err != nil {
			log.Fatalw("write summary csv failed", "path", *summaryPath, "err", err)
		}
		fmt.Printf("\nDistrict summary written: %s\n", *summaryPath)
	}

	estimates := make(map[string]domain.RouteEstimate, len(result.Summaries))
	for _, s := range result.Summaries {
		estimates[s.District] = s.Estimate
	}

	plan := services.SelectVanLoad(targeted, estimates, van)
	printPlan(targetArea, len(pool), plan)

	status := "REJECTED"
	if plan.Viable {
		status = "USED"
		if *dispatchPath != "" {
			if err := writeDispatch(*dispatchPath, plan.Orders); err != nil {
				log.Fatalw("write dispatch list failed", "path", *dispatchPath, "err", err)
			}
			fmt.Printf("\nDispatch list written: %s\n", *dispatchPath)
		}
	}

	if *historyPath != "" {
		entry := ports.RunEntry{
			RunID:          uuid.NewString(),
			RanAt:          time.Now(),
			Area:           targetArea,
			PoolSize:       len(pool),
			SelectedOrders: len(plan.Orders),
			VanCost:        plan.VanCost,
			CourierSaving:  plan.CourierSaving,
			NetProfit:      plan.NetProfit,
			Status:         status,
			Note:           *note,
		}
		if err := export.AppendRunHistory(*historyPath, entry); err != nil {
			log.Fatalw("append history failed", "path", *historyPath, "err", err)
		}
		log.Infow("run recorded", "status", status, "net_profit", plan.NetProfit.StringFixed(2))
	}
}

func printAreaStats(stats []services.AreaStat) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AREA\tORDERS\t3PL VALUE")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t£%s\n", s.Area, s.OrderCount, s.CourierValue.StringFixed(2))
	}
	tw.Flush()
}

func printSummaries(result *domain.AnalysisResult) {
	fmt.Println("\nPer-district comparison:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DISTRICT\tORDERS\t3PL\tIN-HOUSE\tFAVORABLE\tBREAKEVEN")
	for _, s := range result.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t£%s\t£%s\t%t\t%d\n",
			s.District, s.OrderCount,
			s.CourierCost.StringFixed(2), s.InHouseCost.StringFixed(2),
			s.Favorable, s.BreakevenVolume,
		)
	}
	tw.Flush()

	if result.SkippedRecords > 0 {
		fmt.Printf("Skipped records: %d\n", result.SkippedRecords)
	}
	if len(result.FlaggedDistricts) > 0 {
		fmt.Printf("Unresolved districts: %s\n", strings.Join(result.FlaggedDistricts, ", "))
	}
	fmt.Printf("Recommendation: %s\n", services.FormatVerdict(result.Recommendation))
}

func printPlan(area string, poolSize int, plan services.LoadPlan) {
	fmt.Printf("\n%s operational plan\n", area)
	fmt.Printf("Pool size:        %d\n", poolSize)
	fmt.Printf("Orders in van:    %d\n", len(plan.Orders))
	fmt.Printf("Route estimate:   %.2f miles (stem + loop)\n", plan.RouteMiles)
	fmt.Printf("Est. shift time:  %.1f hours (inc. drops)\n", plan.ShiftHours)
	fmt.Printf("Courier saved:    £%s\n", plan.CourierSaving.StringFixed(2))
	fmt.Printf("Van cost:         -£%s\n", plan.VanCost.StringFixed(2))
	if plan.Viable {
		fmt.Printf("Net daily profit: £%s\n", plan.NetProfit.StringFixed(2))
	} else {
		fmt.Printf("Net loss:         £%s\n", plan.NetProfit.StringFixed(2))
	}
	if plan.OverDrivingLimit {
		fmt.Println("WARNING: route exceeds the legal driving limit for one driver")
	}
}

func writeDispatch(path string, orders []domain.DeliveryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dispatch file %q: %w", path, err)
	}
	defer f.Close()

	return export.WriteDispatchList(f, orders)
}

func writeSummaries(path string, summaries []domain.DistrictSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file %q: %w", path, err)
	}
	defer f.Close()

	return export.WriteDistrictSummaries(f, summaries)
}
