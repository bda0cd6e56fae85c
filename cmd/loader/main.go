// Command loader imports the question banks from <dir>/<category>_questions.json and
// can backfill keywords for rows stored without them.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/database"
	"github.com/jumptop/ITOP/internal/logger"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/jumptop/ITOP/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type options struct {
	dir             string
	categories      []string
	refreshKeywords bool
	skipImport      bool
}

func main() {
	logger.Init()

	var opts options
	pflag.StringVar(&opts.dir, "dir", "data", "directory holding <category>_questions.json files")
	pflag.StringSliceVar(&opts.categories, "categories", model.CategoryStrings(), "categories to process")
	pflag.BoolVar(&opts.refreshKeywords, "refresh-keywords", false, "derive keywords for stored questions that have none")
	pflag.BoolVar(&opts.skipImport, "skip-import", false, "do not read the json files")
	pflag.Parse()

	cats, err := parseCategories(opts.categories)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid --categories")
	}

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.NewConfig,
			config.NewAWSConfig,
			database.NewDatabase,
			repository.NewQuestionRepository,
			service.NewRandSource,
			service.NewGeminiLLMService,
			func(awsCfg aws.Config) service.KeyPhraseDetector {
				return service.NewComprehendDetector(awsCfg)
			},
			func(llm service.GeminiLLMService) service.KeywordFilter {
				if !llm.Available() {
					return nil
				}
				return llm
			},
			service.NewKeywordService,
			service.NewQuestionService,
		),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, db *gorm.DB, qs service.QuestionService) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						code := 0
						if err := run(context.Background(), db, qs, cats, opts); err != nil {
							log.Error().Err(err).Msg("Loader failed")
							code = 1
						}
						_ = sd.Shutdown(fx.ExitCode(code))
					}()
					return nil
				},
			})
		}),
	)
	app.Run()
}

func run(ctx context.Context, db *gorm.DB, qs service.QuestionService, cats []model.Category, opts options) error {
	if err := repository.AutoMigrate(db); err != nil {
		return err
	}
	for _, cat := range cats {
		if !opts.skipImport {
			n, err := importFile(ctx, qs, cat, opts.dir)
			switch {
			case os.IsNotExist(err):
				log.Warn().Str("category", cat.String()).Str("dir", opts.dir).Msg("Question file not found, skipping")
			case err != nil:
				return err
			default:
				log.Info().Str("category", cat.String()).Int("count", n).Msg("Questions imported")
			}
		}
		if opts.refreshKeywords {
			n, err := qs.RefreshMissingKeywords(ctx, cat)
			if err != nil {
				return err
			}
			log.Info().Str("category", cat.String()).Int("updated", n).Msg("Keywords refreshed")
		}
	}
	return nil
}
