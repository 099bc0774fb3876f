package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"companysearch/internal/biz"
	"companysearch/internal/conf"
	"companysearch/internal/data"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	confPath string
	verbose  bool
}

// newRootCmd represents the base command when called without any subcommands.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "cachectl",
		Short:        "Inspect and maintain the company search cache",
		SilenceUsage: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&opts.confPath, "conf", "c", "configs", "config path, eg: -c configs/config.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log usecase activity to stderr")

	cmd.AddCommand(
		newStatsCmd(opts),
		newSweepCmd(opts),
		newClearCmd(opts),
		newInvalidateCmd(opts),
	)
	return cmd
}

func (o *options) logger() log.Logger {
	var w io.Writer = io.Discard
	if o.verbose {
		w = os.Stderr
	}
	return log.With(log.NewStdLogger(w), "ts", log.DefaultTimestamp)
}

// withCache loads the configuration, builds the cache usecase and passes it to fn.
func (o *options) withCache(fn func(*biz.SearchCacheUsecase) error) error {
	bc, c, err := conf.Load(o.confPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer c.Close()

	logger := o.logger()
	d, cleanup, err := data.NewData(bc.Data, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer cleanup()
	if d.InMemory() {
		return fmt.Errorf("no database configured in %s", o.confPath)
	}

	redisCache, cleanupRedis, err := data.NewRedisCache(bc.Data, logger)
	if err != nil {
		return err
	}
	defer cleanupRedis()

	gen := data.NewGenerator(bc.AI, logger)
	keys := data.NewKeyBuilder(data.NewNormalizer(bc.AI, gen, data.NewNormalizationMemo(bc.AI, redisCache, logger), logger))
	uc := biz.NewSearchCacheUsecase(
		bc.Cache,
		data.NewSearchCacheRepo(d, logger),
		keys,
		data.NewKeywordExtractor(bc.AI, gen, logger),
		data.NewPrefilter(bc.Cache, redisCache, logger),
		logger,
	)
	return fn(uc)
}
