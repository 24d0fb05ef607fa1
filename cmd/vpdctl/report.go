package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shenki/openpower-vpd-parser/internal/report"
)

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	storePath := fs.String("store", "", "inventory JSON written by parse")
	out := fs.String("out", "report.pdf", "output PDF")
	qrOut := fs.String("qr-out", "", "output PNG with the serial number QR code")
	qrRecord := fs.String("qr-record", "VINI", "record holding the serial number")
	qrKeyword := fs.String("qr-keyword", "SN", "keyword holding the serial number")
	qrSize := fs.Int("qr-size", 256, "QR code size in pixels")
	fs.Parse(args)

	if *storePath == "" {
		fmt.Println("required: --store")
		os.Exit(1)
	}
	store, err := report.LoadStoreJSON(*storePath)
	if err != nil {
		fail("load inventory", err)
	}
	if err := report.SaveInventoryPDF(store, nil, *out); err != nil {
		fail("write pdf", err)
	}
	fmt.Println("Wrote PDF:", *out)

	if *qrOut == "" {
		return
	}
	serial, err := store.Get(*qrRecord, *qrKeyword)
	if err != nil {
		fail("serial lookup", err)
	}
	png, err := report.SerialToQR(serial, *qrSize)
	if err != nil {
		fail("encode qr", err)
	}
	if err := os.WriteFile(*qrOut, png, 0644); err != nil {
		fail("write qr", err)
	}
	fmt.Println("Wrote QR:", *qrOut)
}
