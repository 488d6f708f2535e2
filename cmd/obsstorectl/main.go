// Command obsstorectl is a small operator CLI over ObservationStore,
// SPEC_FULL.md §4.J's "ambient deployment wiring every runnable module in
// the teacher pack carries" (e.g. erigon's cmd/ tree): not part of the
// specified design, but the minimal entrypoint that exercises it.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/cobalt-telemetry/observationstore/config"
	"github.com/cobalt-telemetry/observationstore/datastore"
	"github.com/cobalt-telemetry/observationstore/obsproto"
	"github.com/cobalt-telemetry/observationstore/observationstore"
)

type appContext struct {
	store *observationstore.Store
}

type addBatchCmd struct {
	Customer uint32   `help:"Customer ID." required:""`
	Project  uint32   `help:"Project ID." required:""`
	Metric   uint32   `help:"Metric ID." required:""`
	Day      uint32   `help:"Day index."`
	Board    string   `help:"SystemProfile board_name, if any."`
	Count    int      `help:"Number of synthetic observations to write." default:"1"`
	Parts    []string `help:"Part names each observation carries." default:"part0"`
}

func (c *addBatchCmd) Run(ctx *appContext) error {
	meta := observationstore.ObservationMetadata{
		CustomerID: c.Customer, ProjectID: c.Project, MetricID: c.Metric, DayIndex: c.Day,
	}
	if c.Board != "" {
		meta.SystemProfile = &obsproto.SystemProfile{BoardName: c.Board}
	}

	observations := make([]obsproto.Observation, c.Count)
	for i := range observations {
		parts := make(map[string]obsproto.ObservationPart, len(c.Parts))
		for _, name := range c.Parts {
			parts[name] = obsproto.ObservationPart{Variant: obsproto.PartVariantRappor, Data: []byte(strconv.Itoa(i))}
		}
		observations[i] = obsproto.Observation{Parts: parts}
	}

	status := ctx.store.AddObservationBatch(context.Background(), meta, observations)
	if status != datastore.StatusOK {
		return fmt.Errorf("add-batch: %s", status)
	}
	fmt.Printf("wrote %d observations\n", len(observations))
	return nil
}

type queryCmd struct {
	Customer  uint32   `help:"Customer ID." required:""`
	Project   uint32   `help:"Project ID." required:""`
	Metric    uint32   `help:"Metric ID." required:""`
	FirstDay  uint32   `help:"First day index, inclusive."`
	LastDay   uint32   `help:"Last day index, inclusive." default:"4294967295"`
	Parts     []string `help:"Part names to keep; empty keeps all."`
	MaxResults int     `help:"Page size." default:"1000"`
}

func (c *queryCmd) Run(ctx *appContext) error {
	token := ""
	total := 0
	for {
		resp := ctx.store.QueryObservations(context.Background(), c.Customer, c.Project, c.Metric,
			c.FirstDay, c.LastDay, c.Parts, nil, c.MaxResults, token)
		if resp.Status != datastore.StatusOK {
			return fmt.Errorf("query: %s", resp.Status)
		}
		total += len(resp.Results)
		if resp.PaginationToken == "" {
			break
		}
		token = resp.PaginationToken
	}
	fmt.Printf("%d observations\n", total)
	return nil
}

type deleteMetricCmd struct {
	Customer uint32 `help:"Customer ID." required:""`
	Project  uint32 `help:"Project ID." required:""`
	Metric   uint32 `help:"Metric ID." required:""`
}

func (c *deleteMetricCmd) Run(ctx *appContext) error {
	status := ctx.store.DeleteAllForMetric(context.Background(), c.Customer, c.Project, c.Metric)
	if status != datastore.StatusOK {
		return fmt.Errorf("delete-metric: %s", status)
	}
	return nil
}

type deleteAllCmd struct {
	Table string `help:"Table to truncate (observations|reports)." required:""`
}

func (c *deleteAllCmd) Run(ctx *appContext) error {
	status := ctx.store.DeleteAllRows(context.Background(), c.Table)
	if status != datastore.StatusOK {
		return fmt.Errorf("delete-all: %s", status)
	}
	return nil
}

var cli struct {
	Config string `help:"Path to a TOML config file." type:"path"`
	Memory bool   `help:"Use an in-process MemoryDataStore instead of the remote backend."`

	AddBatch     addBatchCmd     `cmd:"" name:"add-batch" help:"Write synthetic observations, for local testing."`
	Query        queryCmd        `cmd:"" help:"Query observations and print a result count."`
	DeleteMetric deleteMetricCmd `cmd:"" name:"delete-metric" help:"Delete all observations for one metric."`
	DeleteAll    deleteAllCmd    `cmd:"" name:"delete-all" help:"Truncate a table. Admin-only."`
}

func main() {
	parsed := kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	parsed.FatalIfErrorf(err)

	log.Root().SetHandler(log.LvlFilterHandler(parseLevel(cfg.Logging.Level), log.StderrHandler))

	var ds datastore.DataStore
	if cli.Memory {
		ds = datastore.NewMemoryDataStore()
	} else {
		client := datastore.NewHTTPRemoteClient(cfg.Backend.Endpoint)
		ds = datastore.NewBackendDataStore(client, cfg.BackendConfig())
	}

	err = parsed.Run(&appContext{store: observationstore.New(ds)})
	parsed.FatalIfErrorf(err)
}

func parseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "error":
		return log.LvlError
	case "warn":
		return log.LvlWarn
	case "debug":
		return log.LvlDebug
	case "trace":
		return log.LvlTrace
	default:
		return log.LvlInfo
	}
}
