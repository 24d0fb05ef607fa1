package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shenki/openpower-vpd-parser/internal/common"
	"github.com/shenki/openpower-vpd-parser/internal/report"
)

type batchResult struct {
	image    string
	out      string
	records  int
	keywords int
	problems int
	err      error
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inDir := fs.String("in", ".", "directory of VPD images")
	outDir := fs.String("out-dir", "out", "results directory")
	platformPath := fs.String("platform", "", "platform table YAML (defaults to the built-in table)")
	bestEffort := fs.Bool("best-effort", false, "skip failing records and keywords instead of aborting")
	skipRecordECC := fs.Bool("skip-record-ecc", false, "skip per-record ECC verification")
	concurrency := fs.Int("concurrency", runtime.NumCPU(), "maximum concurrent parses")
	auditPath := fs.String("audit", "", "audit log output (jsonl)")
	fs.Parse(args)

	entries, err := os.ReadDir(*inDir)
	if err != nil {
		fail("read input dir", err)
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		images = append(images, filepath.Join(*inDir, entry.Name()))
	}
	if len(images) == 0 {
		fmt.Println("no images found in", *inDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fail("create output dir", err)
	}
	var audit *common.ParseLog
	if *auditPath != "" {
		audit = common.NewParseLog(*auditPath)
	}

	var (
		mu      sync.Mutex
		results []batchResult
	)
	var g errgroup.Group
	g.SetLimit(*concurrency)
	for _, image := range images {
		image := image
		g.Go(func() error {
			res := parseOne(image, *outDir, *platformPath, *bestEffort, *skipRecordECC, audit)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].image < results[j].image })
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", res.image, res.err)
			continue
		}
		fmt.Printf("OK   %s: %d records, %d keywords", res.image, res.records, res.keywords)
		if res.problems > 0 {
			fmt.Printf(", %d problems", res.problems)
		}
		fmt.Printf(" -> %s\n", res.out)
	}
	fmt.Printf("%d parsed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func parseOne(image, outDir, platformPath string, bestEffort, skipRecordECC bool, audit *common.ParseLog) batchResult {
	res := batchResult{image: image}
	store, problems, _, err := parseImage(image, "", platformPath, bestEffort, skipRecordECC)
	sha, _, hashErr := common.Sha256OfFile(image)
	if hashErr != nil {
		sha = ""
	}
	if err != nil {
		res.err = err
		if audit != nil {
			if aerr := audit.Append(common.ParseEntry{Image: image, Sha256: sha, Error: err.Error()}); aerr != nil {
				common.Logf("audit append: %v", aerr)
			}
		}
		return res
	}
	base := strings.TrimSuffix(filepath.Base(image), filepath.Ext(image))
	res.out = filepath.Join(outDir, base+".json")
	if err := report.SaveStoreJSON(store, res.out); err != nil {
		res.err = fmt.Errorf("write inventory: %w", err)
		return res
	}
	res.records = len(store.Records())
	res.keywords = store.KeywordCount()
	res.problems = len(problems)
	if audit != nil {
		if aerr := audit.Append(common.ParseEntry{
			Image:    image,
			Sha256:   sha,
			Records:  res.records,
			Keywords: res.keywords,
		}); aerr != nil {
			common.Logf("audit append: %v", aerr)
		}
	}
	return res
}
