// BinPack packs rectangular items into a single bin, maximising the cost of
// what fits.
//
// Build:
//
//	go build -o binpack ./cmd/binpack
//
// Usage:
//
//	binpack --request request.json --out result.json
//	binpack --items items.csv --bin-width 1200 --bin-length 800 --pdf report.pdf
//	cat items.csv | binpack --items - --bin-width 1200 --bin-length 800
//	binpack --export-backup backup.json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/piwi3910/BinPack/internal/cli"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config file (default ~/.binpack/config.json)")
		requestFile = flag.String("request", "", "Path to a JSON packing request")
		itemsFile   = flag.String("items", "", "Path to an item list (.csv, .xlsx or .dxf), or - for CSV on stdin")
		binWidth    = flag.Int64("bin-width", 0, "Bin width, used with -items")
		binLength   = flag.Int64("bin-length", 0, "Bin length, used with -items")
		maxWeight   = flag.Int64("max-weight", -1, "Bin weight limit, used with -items (default unconstrained)")
		outFile     = flag.String("out", "", "Write the result JSON here instead of stdout")
		saveRequest = flag.String("save-request", "", "Write the assembled request JSON here")
		pdfFile     = flag.String("pdf", "", "Write a PDF layout report")
		labelsFile  = flag.String("labels", "", "Write a PDF of QR-coded item labels")
		xlsxFile    = flag.String("xlsx", "", "Write an Excel workbook of the result")
		compare     = flag.Bool("compare", false, "Report every strategy side by side")
		parallel    = flag.Bool("parallel", false, "Run strategies concurrently")
		algorithm   = flag.String("algorithm", "", "Packing algorithm: greedy or genetic")
		verbose     = flag.BoolP("verbose", "v", false, "Enable debug logging")

		exportBackup = flag.String("export-backup", "", "Write the config and recent requests to a backup file, then exit")
		importBackup = flag.String("import-backup", "", "Restore the config and requests from a backup file, then exit")
	)
	flag.Parse()

	config := cli.Config{
		ConfigPath:  *configPath,
		RequestFile: *requestFile,
		ItemsFile:   *itemsFile,
		BinWidth:    *binWidth,
		BinLength:   *binLength,
		MaxWeight:   *maxWeight,
		OutFile:     *outFile,
		SaveRequest: *saveRequest,
		PDFFile:     *pdfFile,
		LabelsFile:  *labelsFile,
		XLSXFile:    *xlsxFile,
		Compare:     *compare,
		Parallel:    *parallel,
		Algorithm:   *algorithm,
		Verbose:     *verbose,

		ExportBackup: *exportBackup,
		ImportBackup: *importBackup,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewCommand(config, os.Stdout, os.Stderr).Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
