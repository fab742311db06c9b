// Command echokernel is the CLI for the echokernel toolkit.
//
// Usage:
//
//	echokernel query "What is the capital of France?"
//	echokernel chat --config config.yaml
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/echolabs/echokernel"
	"github.com/echolabs/echokernel/config"
	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
	"github.com/echolabs/echokernel/memory"
	anthropicprovider "github.com/echolabs/echokernel/provider/anthropic"
	openaiprovider "github.com/echolabs/echokernel/provider/openai"
	"github.com/echolabs/echokernel/search"
	"github.com/echolabs/echokernel/tools"
)

// CLI defines the command-line interface.
type CLI struct {
	Query QueryCmd `cmd:"" help:"Run a single query and exit."`
	Chat  ChatCmd  `cmd:"" help:"Start an interactive session."`

	Config string `short:"c" help:"Path to YAML config file." type:"path"`
}

// QueryCmd runs a single query.
type QueryCmd struct {
	Text string `arg:"" help:"The prompt to send."`
}

func (c *QueryCmd) Run(cli *CLI) error {
	kernel, err := buildKernel(cli.Config)
	if err != nil {
		return err
	}

	result, err := kernel.GenerateText(context.Background(), c.Text)
	if err != nil {
		return err
	}

	fmt.Println(result)

	return nil
}

// ChatCmd runs an interactive read-eval-print loop.
type ChatCmd struct{}

func (c *ChatCmd) Run(cli *CLI) error {
	kernel, err := buildKernel(cli.Config)
	if err != nil {
		return err
	}

	fmt.Println("EchoKernel Interactive Mode")
	fmt.Println("Type 'quit' or 'exit' to exit")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("echokernel> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if input == "quit" || input == "exit" {
			break
		}

		result, err := kernel.GenerateText(context.Background(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Println(result)
		fmt.Println()
	}

	return scanner.Err()
}

// buildKernel assembles a kernel from the layered configuration: text and
// embedding providers, semantic memory, and the built-in tools.
func buildKernel(configPath string) (*echokernel.Kernel, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	kernel := echokernel.New(func(o *echokernel.Options) {
		o.Logger = logger
	})

	switch cfg.Text.Provider {
	case "anthropic":
		kernel.RegisterProvider(anthropicprovider.NewTextProvider(func(o *anthropicprovider.TextProviderOptions) {
			if cfg.Text.Model != "" {
				o.Model = anthropic.Model(cfg.Text.Model)
			}
			o.APIKey = cfg.Text.APIKey
			o.Logger = logger
		}))
	case "openai":
		kernel.RegisterProvider(openaiprovider.NewTextProvider(func(o *openaiprovider.TextProviderOptions) {
			if cfg.Text.Model != "" {
				o.Model = cfg.Text.Model
			}
			o.Logger = logger
		}))
	default:
		return nil, fmt.Errorf("unknown text provider %q", cfg.Text.Provider)
	}

	if cfg.Memory.Enabled {
		if err := attachMemory(kernel, cfg, logger); err != nil {
			return nil, err
		}
	}

	if err := registerTools(kernel, cfg); err != nil {
		return nil, err
	}

	return kernel, nil
}

func attachMemory(kernel *echokernel.Kernel, cfg *config.Config, logger logging.Logger) error {
	embedder := openaiprovider.NewEmbeddingProvider(func(o *openaiprovider.EmbeddingProviderOptions) {
		if cfg.Memory.EmbedderModel != "" {
			o.Model = cfg.Memory.EmbedderModel
		}
	})

	var (
		storage core.VectorStorage
		err     error
	)

	switch cfg.Memory.Storage {
	case "qdrant":
		storage, err = memory.NewQdrantStorage(cfg.Memory.QdrantAddr)
	case "chromem":
		storage, err = memory.NewChromemStorage(func(o *memory.ChromemStorageOptions) {
			o.PersistPath = cfg.Memory.PersistPath
		})
	default:
		return fmt.Errorf("unknown memory storage %q", cfg.Memory.Storage)
	}

	if err != nil {
		return fmt.Errorf("create memory storage: %w", err)
	}

	kernel.RegisterProvider(embedder)
	kernel.RegisterProvider(storage)
	kernel.RegisterProvider(memory.NewVectorMemory(embedder, storage, func(o *memory.VectorMemoryOptions) {
		o.Logger = logger
	}))

	return nil
}

func registerTools(kernel *echokernel.Kernel, cfg *config.Config) error {
	var engine search.Provider

	switch cfg.Search.Provider {
	case "bing":
		engine = search.NewBing(cfg.Search.APIKey)
	case "google":
		engine = search.NewGoogle(cfg.Search.APIKey, cfg.Search.EngineID)
	case "duckduckgo":
		engine = search.NewDuckDuckGo()
	default:
		return fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}

	webSearch, err := tools.NewWebSearchTool(engine)
	if err != nil {
		return err
	}

	webAccess, err := tools.NewWebAccessTool(tools.NewWebFetcher())
	if err != nil {
		return err
	}

	codeInterpreter, err := tools.NewCodeInterpreterTool(tools.NewSubprocessExecutor())
	if err != nil {
		return err
	}

	kernel.RegisterTool(webSearch)
	kernel.RegisterTool(webAccess)
	kernel.RegisterTool(codeInterpreter)

	return nil
}

func main() {
	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("echokernel"),
		kong.Description("AI-powered application toolkit."),
		kong.UsageOnError(),
	)

	ctx.FatalIfErrorf(ctx.Run(&cli))
}
