package main

import (
	"fmt"
	"os"

	"github.com/shenki/openpower-vpd-parser/internal/common"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "parse":
		parseCmd(os.Args[2:])
	case "read":
		readCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`vpdctl %s (built %s) <command> [options]

Commands:
  parse   --in <eeprom.bin> [--inventory-path <path>] [--platform <platform.yaml>] [--best-effort] [--skip-record-ecc] [--out <inventory.json>] [--audit <parses.jsonl>] [--metrics]
  read    --in <eeprom.bin> --record <name> --keyword <name> --offset <record offset> [--platform <platform.yaml>] [--start-offset <image offset>]
  report  --store <inventory.json> --out <report.pdf> [--qr-out <serial.png>]
  batch   --in <dir> --out-dir <dir> [--platform <platform.yaml>] [--best-effort] [--skip-record-ecc] [--concurrency <n>]
`, version, buildDate)
}

func fail(what string, err error) {
	fmt.Println(what+":", err)
	os.Exit(1)
}

func auditAppend(path string, entry common.ParseEntry) {
	if path == "" {
		return
	}
	if err := common.NewParseLog(path).Append(entry); err != nil {
		common.Logf("audit append: %v", err)
	}
}
