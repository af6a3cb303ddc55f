package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/P-Jays/crypto-telegram-bot/core/config"
	"github.com/P-Jays/crypto-telegram-bot/core/database"
	"github.com/P-Jays/crypto-telegram-bot/core/settings/application"
	"github.com/P-Jays/crypto-telegram-bot/domains/insight"
	"github.com/P-Jays/crypto-telegram-bot/domains/token"
	"github.com/P-Jays/crypto-telegram-bot/integrations/coingecko"
	"github.com/P-Jays/crypto-telegram-bot/integrations/dexscreener"
	"github.com/P-Jays/crypto-telegram-bot/pkg/utils"
	"github.com/P-Jays/crypto-telegram-bot/providers"
	"github.com/P-Jays/crypto-telegram-bot/repository"
	"github.com/P-Jays/crypto-telegram-bot/ui/telegram"
	"github.com/P-Jays/crypto-telegram-bot/usecase"
)

var (
	flagPort  string
	flagDebug bool

	// Shared services wired in initApp, consumed by the subcommands.
	tokenUsecase   token.ITokenUsecase
	insightUsecase insight.IInsightUsecase
	settingsSvc    *application.SettingsService
	telegramBot    *telegram.Bot
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crypto-telegram-bot",
	Short: "Crypto token price and safety bot",
	Long: `Resolves free-text crypto token queries to contract addresses and
serves price snapshots plus AI safety assessments over Telegram and a
REST API.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)

	cobra.OnInitialize(initApp)
}

func initApp() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}

	// Flag and viper overrides on top of the env config.
	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug || viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := os.MkdirAll("storages", 0o755); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to open database: %v", err)
	}

	marketCacheRepo := repository.NewMarketCacheGormRepository(db)
	if err := marketCacheRepo.InitSchema(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate market cache: %v", err)
	}

	settingsSvc = application.NewSettingsService(db)
	if err := settingsSvc.InitSchema(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate chat settings: %v", err)
	}

	marketOpts := []coingecko.Option{coingecko.WithDurableCache(marketCacheRepo)}
	if cfg.Market.BaseURL != "" {
		marketOpts = append(marketOpts, coingecko.WithBaseURL(cfg.Market.BaseURL))
	}
	if cfg.Market.APIKey != "" {
		marketOpts = append(marketOpts, coingecko.WithAPIKey(cfg.Market.APIKey))
	}
	marketClient := coingecko.NewClient(marketOpts...)

	var dexOpts []dexscreener.Option
	if cfg.Dex.BaseURL != "" {
		dexOpts = append(dexOpts, dexscreener.WithBaseURL(cfg.Dex.BaseURL))
	}
	dexClient := dexscreener.NewClient(dexOpts...)

	resolver := usecase.NewResolverService(marketClient, dexClient)

	providerMap := map[string]insight.IProvider{}
	if cfg.AI.OpenAIKey != "" {
		providerMap[insight.ProviderOpenAI] = providers.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
	}
	if cfg.AI.GeminiKey != "" {
		providerMap[insight.ProviderGemini] = providers.NewGeminiProvider(cfg.AI.GeminiKey, cfg.AI.GeminiModel)
	}
	insightUsecase = usecase.NewInsightService(providerMap, nil)

	tokenUsecase = usecase.NewTokenService(marketClient, dexClient, resolver, insightUsecase)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
