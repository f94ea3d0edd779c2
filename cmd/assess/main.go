// Command assess runs one flood-risk assessment and prints the report as
// JSON. Live rainfall and Kafka publishing follow the same environment
// variables as the server.
//
// Usage:
//
//	go run ./cmd/assess -region 서울특별시 -district 강남구 -rainfall 120 -elevation 5
//	go run ./cmd/assess -list
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kafkaadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/kma"
	"github.com/couchcryptid/flood-risk-service/internal/assessment"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/registry"
)

func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(out io.Writer) error {
	region := flag.String("region", "", "region name, e.g. 서울특별시")
	district := flag.String("district", "", "district name, e.g. 강남구")
	rainfall := flag.Float64("rainfall", assessment.DefaultRainfallMM, "fallback rainfall in mm when live data is unavailable")
	elevation := flag.Float64("elevation", assessment.DefaultElevationM, "site elevation in m")
	seed := flag.Uint64("seed", 0, "flood depth simulator seed (0 = random)")
	list := flag.Bool("list", false, "list regions and districts and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewUnregisteredMetrics()

	reg, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if *list {
		type entry struct {
			Region    string   `json:"region"`
			Districts []string `json:"districts"`
		}
		var entries []entry
		for _, r := range reg.Regions() {
			ds, _ := reg.Districts(r)
			names := make([]string, len(ds))
			for i, d := range ds {
				names[i] = d.Name
			}
			entries = append(entries, entry{Region: r, Districts: names})
		}
		return enc.Encode(entries)
	}

	if *region == "" || *district == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -region, -district")
	}
	if *elevation <= -1 {
		return fmt.Errorf("-elevation must be greater than -1")
	}

	var source domain.ObservationSource
	if cfg.WeatherEnabled {
		client := kma.NewClient(cfg.KMABaseURL, cfg.KMATimeout, cfg.KMADataType, metrics, logger)
		source = kma.NewTimeoutSource(client, cfg.KMATimeout)
	}

	var publisher assessment.Publisher
	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer func() { _ = w.Close() }()
		publisher = w
	}

	sim := domain.NewDepthSimulator(nil)
	if *seed != 0 {
		sim = domain.NewSeededDepthSimulator(*seed)
	}

	svc := assessment.New(reg, source, sim, publisher, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.KMATimeout+5*time.Second)
	defer cancel()

	report, err := svc.Evaluate(ctx, cfg.Settings(), assessment.Request{
		Region:     *region,
		District:   *district,
		RainfallMM: *rainfall,
		ElevationM: *elevation,
	})
	if err != nil {
		return err
	}
	return enc.Encode(report)
}
