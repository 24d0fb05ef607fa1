package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shenki/openpower-vpd-parser/internal/common"
	"github.com/shenki/openpower-vpd-parser/internal/inventory"
	"github.com/shenki/openpower-vpd-parser/internal/ipz"
	"github.com/shenki/openpower-vpd-parser/internal/platform"
	"github.com/shenki/openpower-vpd-parser/internal/report"
)

func parseCmd(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	in := fs.String("in", "", "input VPD image")
	inventoryPath := fs.String("inventory-path", "", "inventory path the parse is attributed to")
	platformPath := fs.String("platform", "", "platform table YAML (defaults to the built-in table)")
	bestEffort := fs.Bool("best-effort", false, "skip failing records and keywords instead of aborting")
	skipRecordECC := fs.Bool("skip-record-ecc", false, "skip per-record ECC verification")
	out := fs.String("out", "inventory.json", "inventory output")
	auditPath := fs.String("audit", "", "audit log output (jsonl)")
	metricsFlag := fs.Bool("metrics", false, "print parse throughput metrics")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	store, problems, metrics, err := parseImage(*in, *inventoryPath, *platformPath, *bestEffort, *skipRecordECC)
	sha, _, hashErr := common.Sha256OfFile(*in)
	if hashErr != nil {
		sha = ""
	}
	if err != nil {
		auditAppend(*auditPath, common.ParseEntry{
			Image:         *in,
			Sha256:        sha,
			InventoryPath: *inventoryPath,
			Error:         err.Error(),
		})
		fail("parse", err)
	}

	if err := report.SaveStoreJSON(store, *out); err != nil {
		fail("write inventory", err)
	}
	auditAppend(*auditPath, common.ParseEntry{
		Image:         *in,
		Sha256:        sha,
		InventoryPath: *inventoryPath,
		Records:       len(store.Records()),
		Keywords:      store.KeywordCount(),
	})

	fmt.Printf("Parsed %d records, %d keywords from %s\n",
		len(store.Records()), store.KeywordCount(), *in)
	for _, p := range problems {
		fmt.Printf("Problem: %s/%s at offset 0x%X: %s\n", p.Record, p.Keyword, p.Offset, p.Message)
	}
	fmt.Println("Wrote", *out)
	if *metricsFlag {
		snap := metrics.Snapshot()
		fmt.Printf("Metrics: duration=%s records=%d keywords=%d processed=%s throughput=%.2f MB/s ecc-failures=%d\n",
			snap.Duration.Round(10*time.Microsecond),
			snap.Records,
			snap.Keywords,
			common.FormatBytes(snap.Bytes),
			snap.ThroughputBytesPerSecond()/1_000_000,
			snap.ECCFailures,
		)
	}
}

func parseImage(in, inventoryPath, platformPath string, bestEffort, skipRecordECC bool) (*inventory.Store, []ipz.Problem, *common.Metrics, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, nil, nil, err
	}
	table, err := platform.EnsureLoaded(platformPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load platform table: %w", err)
	}
	policy := ipz.PolicyAbort
	if bestEffort {
		policy = ipz.PolicyBestEffort
	}
	metrics := common.NewMetrics()
	parser := ipz.NewParser(data, inventoryPath, in, table, ipz.Options{
		Policy:        policy,
		SkipRecordECC: skipRecordECC,
		Metrics:       metrics,
	})
	store, err := parser.Run()
	if err != nil {
		return nil, nil, metrics, err
	}
	return store, parser.Problems(), metrics, nil
}
