package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type options struct {
	apiURL    string
	history   bool
	limit     int
	timeout   time.Duration
	imagePath string
}

// parseFlags 先載入 .env，再以環境變數作為旗標預設值
func parseFlags(args []string, envFiles ...string) (*options, error) {
	_ = godotenv.Load(envFiles...)

	opts := &options{}
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.StringVar(&opts.apiURL, "api", envOr("FOOD_ANALYZER_URL", "http://localhost:8080"), "Food analyzer API base URL")
	fs.BoolVar(&opts.history, "history", false, "Print recent analyses instead of uploading an image")
	fs.IntVar(&opts.limit, "limit", 10, "Number of analyses to print with -history")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.imagePath = fs.Arg(0)
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	client := newClient(opts.apiURL, opts.timeout)

	if opts.history {
		resp, err := client.History(opts.limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
			os.Exit(1)
		}
		printHistory(os.Stdout, resp)
		return
	}

	if opts.imagePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: analyze [-api <url>] <image_path>\n")
		fmt.Fprintf(os.Stderr, "       analyze -history [-limit n]\n")
		os.Exit(1)
	}

	fmt.Printf("📤 Enviando imagen: %s\n", opts.imagePath)
	fmt.Printf("🌐 API URL: %s\n", client.analyzeURL())

	result, err := client.Analyze(opts.imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
	printAnalysis(os.Stdout, result)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
