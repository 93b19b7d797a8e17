package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/logan676/bookpost/internal/api"
	"github.com/logan676/bookpost/internal/cache"
	"github.com/logan676/bookpost/internal/meaning"
	"github.com/logan676/bookpost/internal/reader"
	"github.com/logan676/bookpost/internal/tui"
	"github.com/logan676/bookpost/internal/underline"
)

func main() {
	// A .env alongside the binary is the easiest way to carry the API token
	// during development; absence is fine.
	_ = godotenv.Load()

	docPath := flag.String("doc", "", "path to the document to read (.txt book or .pdf)")
	variantFlag := flag.String("variant", "", "rendering variant: paragraph, page, or reflow (default by file type)")
	apiBase := flag.String("api", envOr("BOOKPOST_API", "http://localhost:8080/api/v1"), "Content API base URL")
	cacheDir := flag.String("cache", defaultCacheDir(), "directory for offline underline snapshots")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	meaningModel := flag.String("meaning-model", "", "override the default Ollama model (ministral-3:latest)")
	meaningEndpoint := flag.String("meaning-endpoint", "", "custom Ollama host (eg. http://localhost:11434)")
	flag.Parse()

	if *docPath == "" {
		fmt.Println("usage: bookpost -doc <book.txt|paper.pdf>")
		os.Exit(2)
	}
	absPath, err := filepath.Abs(*docPath)
	if err != nil {
		fmt.Println("failed to resolve document path:", err)
		os.Exit(1)
	}

	config := tui.Config{
		DocumentID: strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath)),
	}

	variant, err := pickVariant(*variantFlag, absPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	config.Variant = variant

	switch variant {
	case tui.VariantPage:
		pdf, err := reader.LoadPDF(absPath)
		if err != nil {
			fmt.Println("failed to open PDF:", err)
			os.Exit(1)
		}
		config.PDF = pdf
	default:
		book, err := reader.LoadBook(absPath)
		if err != nil {
			fmt.Println("failed to open book:", err)
			os.Exit(1)
		}
		config.Book = book
	}

	client := api.NewClient(api.Config{
		BaseURL: *apiBase,
		Token:   os.Getenv("BOOKPOST_TOKEN"),
	})
	config.ReadOnly = !client.Authenticated()

	var snapshots underline.Snapshotter
	if store, err := cache.Open(*cacheDir); err != nil {
		fmt.Println("offline cache disabled:", err)
	} else {
		snapshots = store
	}

	store := underline.NewStore(client, snapshots, config.DocumentID)
	config.Store = store
	config.Ideas = underline.NewIdeas(client, store)

	meaningClient, err := meaning.NewFromEnv(meaning.Config{
		Model:    *meaningModel,
		Endpoint: *meaningEndpoint,
	})
	if err != nil {
		fmt.Println("meaning lookups disabled:", err)
	} else {
		config.Meaning = meaningClient
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(config), opts...)
	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

func pickVariant(flagValue, path string) (tui.Variant, error) {
	switch strings.ToLower(strings.TrimSpace(flagValue)) {
	case "paragraph":
		return tui.VariantParagraph, nil
	case "page":
		return tui.VariantPage, nil
	case "reflow":
		return tui.VariantReflow, nil
	case "":
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			return tui.VariantPage, nil
		}
		return tui.VariantParagraph, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want paragraph, page, or reflow)", flagValue)
	}
}

func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "bookpost", "snapshots")
	}
	return filepath.Join(".", ".bookpost-cache")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
