package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type addNumbersRequest struct {
	Numbers []string `json:"numbers"`
}

// readNumbers returns the raw entries of r. Entries are separated by
// newlines, commas or semicolons; blank entries and '#' comments are skipped.
func readNumbers(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
			if field = strings.TrimSpace(field); field != "" {
				out = append(out, field)
			}
		}
	}
	return out, sc.Err()
}

// batches splits numbers into consecutive chunks of at most size entries.
func batches(numbers []string, size int) [][]string {
	if size <= 0 {
		size = len(numbers)
	}
	var out [][]string
	for start := 0; start < len(numbers); start += size {
		end := min(start+size, len(numbers))
		out = append(out, numbers[start:end])
	}
	return out
}

func postBatch(client *http.Client, url string, batch []string) (string, error) {
	body, err := json.Marshal(addNumbersRequest{Numbers: batch})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	reply, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(reply))
	}
	return string(reply), nil
}

func run() error {
	var (
		baseURL   string
		filePath  string
		batchSize int
	)

	flagSet := pflag.NewFlagSet("import-numbers", pflag.ContinueOnError)
	flagSet.StringVar(&baseURL, "url", "http://localhost:3000", "broadcast-api base URL")
	flagSet.StringVarP(&filePath, "file", "f", "-", "numbers file, '-' for stdin")
	flagSet.IntVar(&batchSize, "batch-size", 500, "numbers per request")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	var in io.Reader = os.Stdin
	if filePath != "-" {
		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("open %s: %w", filePath, err)
		}
		defer f.Close()
		in = f
	}

	numbers, err := readNumbers(in)
	if err != nil {
		return fmt.Errorf("read numbers: %w", err)
	}
	if len(numbers) == 0 {
		fmt.Println("⚠️  No numbers found")
		return nil
	}

	client := &http.Client{Timeout: 10 * time.Second}
	url := strings.TrimRight(baseURL, "/") + "/add-number"

	fmt.Printf("📤 Importing %d numbers into %s\n", len(numbers), url)
	for i, batch := range batches(numbers, batchSize) {
		reply, err := postBatch(client, url, batch)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		fmt.Printf("✅ Batch %d (%d entries): %s\n", i+1, len(batch), reply)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
