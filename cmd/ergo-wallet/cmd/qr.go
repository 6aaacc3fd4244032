package cmd

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/ergo-wallet/internal/coldsign"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/qr"
)

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Encode and decode cold signing QR pages",
}

var (
	qrReducedFile  string
	qrSender       string
	qrInputFiles   []string
	qrFragmentSize int
	qrImageSize    int
	qrOutDir       string
)

var qrRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Split a cold signing request into QR pages",
	Long: `Reads a serialized reduced transaction and its input boxes, prints one page
text per line and, with --out, writes each page as page-N.png.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reduced, err := os.ReadFile(qrReducedFile)
		if err != nil {
			return fmt.Errorf("failed to read reduced transaction: %w", err)
		}
		req := &model.ColdSigningRequest{
			ReducedTransaction: reduced,
			SenderAddress:      qrSender,
		}
		for _, f := range qrInputFiles {
			box, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("failed to read input box: %w", err)
			}
			req.InputBoxes = append(req.InputBoxes, box)
		}

		pages, err := coldsign.RequestPages(req, qrFragmentSize)
		if err != nil {
			return err
		}
		for _, p := range pages {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		if qrOutDir == "" {
			return nil
		}
		return writePages(pages)
	},
}

func writePages(pages []string) error {
	images, err := qr.Pages(pages, qrImageSize)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(qrOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	for i, img := range images {
		name := filepath.Join(qrOutDir, fmt.Sprintf("page-%d.png", i+1))
		if err := os.WriteFile(name, img, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// resultSummary is the printed form of a decoded cold signing result
type resultSummary struct {
	Success bool     `json:"success"`
	Address string   `json:"address,omitempty"`
	Payload string   `json:"payload"` // hex
	Proofs  []string `json:"proofs,omitempty"`
}

var qrResultCmd = &cobra.Command{
	Use:   "result [file]",
	Short: "Decode scanned cold signing result pages",
	Long:  `Reads one scanned page text per line from file, or stdin, in any order.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		pages, err := readLines(in)
		if err != nil {
			return err
		}
		res, err := coldsign.DecodeResultPages(pages)
		if err != nil {
			return err
		}

		out := resultSummary{
			Success: res.Success,
			Address: res.SubjectAddress,
			Payload: hex.EncodeToString(res.Payload),
		}
		for _, p := range res.AuxiliaryProofs {
			out.Proofs = append(out.Proofs, hex.EncodeToString(p))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pages: %w", err)
	}
	return lines, nil
}

func init() {
	qrRequestCmd.Flags().StringVar(&qrReducedFile, "reduced", "", "file with the serialized reduced transaction")
	qrRequestCmd.Flags().StringVar(&qrSender, "sender", "", "sender address")
	qrRequestCmd.Flags().StringSliceVar(&qrInputFiles, "input", nil, "files with serialized input boxes, in input order")
	qrRequestCmd.Flags().IntVar(&qrFragmentSize, "fragment-size", 200, "maximum page fragment size in bytes")
	qrRequestCmd.Flags().IntVar(&qrImageSize, "size", qr.DefaultSize, "PNG size in pixels")
	qrRequestCmd.Flags().StringVar(&qrOutDir, "out", "", "directory for page PNGs")
	qrRequestCmd.MarkFlagRequired("reduced")

	qrCmd.AddCommand(qrRequestCmd, qrResultCmd)
	rootCmd.AddCommand(qrCmd)
}
