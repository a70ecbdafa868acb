// Package main provides the command line companion of the upload server:
// it runs the form checks against a local file and dumps sheet records.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go-excelproc/internal/formctl"
	"go-excelproc/internal/formctl/memdom"
	"go-excelproc/internal/sheet"
)

var pretty bool

var errRejected = errors.New("file rejected")

func main() {
	rootCmd := &cobra.Command{
		Use:           "excelproc",
		Short:         "Check and inspect Excel uploads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Run the upload form checks against a file",
		Long: `check selects the file in an in-memory upload form, submits it and
prints the button label and banners a browser user would see.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	rowsCmd := &cobra.Command{
		Use:   "rows [input.xlsx]",
		Short: "Print the records of the first sheet as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runRows,
	}
	rowsCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(checkCmd, rowsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	info, err := describe(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	doc := memdom.New()
	ctl, _, _, _ := memdom.Mount(doc)
	ctl.Init()

	doc.UploadInput().Choose(info)
	fmt.Fprintf(out, "file:   %s (%s)\n", info.Name, formctl.FormatFileSize(info.Size))
	fmt.Fprintf(out, "excel:  %t\n", formctl.ValidateExcelFile(*info))
	fmt.Fprintf(out, "button: %s\n", doc.UploadButton().Label().Text)
	printBanners(out, doc.Banners())

	submitted := doc.UploadForm().Submit()
	printBanners(out, doc.Banners())

	if !submitted {
		return errRejected
	}
	fmt.Fprintln(out, "result: accepted")
	return nil
}

func printBanners(w io.Writer, banners []formctl.Banner) {
	for _, b := range banners {
		fmt.Fprintf(w, "%-7s %s\n", b.Severity+":", b.Message)
	}
}

// describe builds the FileInfo a browser would report for path. The content
// type is taken from the file's leading bytes.
func describe(path string) (*formctl.FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	info := &formctl.FileInfo{Name: filepath.Base(path), Size: st.Size()}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	header := make([]byte, sheet.HeaderSize)
	n, _ := io.ReadFull(f, header)
	switch sheet.Sniff(header[:n]) {
	case sheet.FormatXLSX:
		info.Type = formctl.ExcelMIMETypes[0]
	case sheet.FormatXLS:
		info.Type = formctl.ExcelMIMETypes[1]
	}
	return info, nil
}

func runRows(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	records, err := sheet.ReadRecords(inputPath)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
