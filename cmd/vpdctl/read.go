package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shenki/openpower-vpd-parser/internal/ipz"
	"github.com/shenki/openpower-vpd-parser/internal/platform"
)

func readCmd(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	in := fs.String("in", "", "input VPD image")
	record := fs.String("record", "", "record name")
	keyword := fs.String("keyword", "", "keyword name")
	recordOffset := fs.Int64("offset", -1, "record offset within the image")
	startOffset := fs.Int64("start-offset", 0, "offset of the VPD area within the image")
	platformPath := fs.String("platform", "", "platform table YAML (defaults to the built-in table)")
	fs.Parse(args)

	if *in == "" || *record == "" || *keyword == "" {
		fmt.Println("required: --in, --record, --keyword")
		os.Exit(1)
	}
	if *recordOffset < 0 {
		fmt.Println("required: --offset")
		os.Exit(1)
	}

	table, err := platform.EnsureLoaded(*platformPath)
	if err != nil {
		fail("load platform table", err)
	}
	f, err := os.Open(*in)
	if err != nil {
		fail("open image", err)
	}
	defer f.Close()

	reader, err := ipz.NewDirectReader(f, *startOffset, map[string]int64{*record: *recordOffset}, table)
	if err != nil {
		fail("direct reader", err)
	}
	value, err := reader.ReadKeyword(*record, *keyword)
	if err != nil {
		fail("read keyword", err)
	}
	fmt.Println(value)
}
