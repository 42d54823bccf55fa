package cmd

import (
	"lending/worker"
	"lending/worker/refresher"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lending job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx).WithField("cmd", "worker")
		ctx = logger.WithContext(ctx, log)

		s := provideServices()
		defer s.db.Close()

		propertyStore := providePropertyStore(s.db)

		jobs := []worker.IJob{
			refresher.New(provideConfig(), s.slots, s.reserves, s.reserveService, propertyStore),
		}

		var g errgroup.Group
		for _, job := range jobs {
			job := job
			g.Go(job.Start)
		}

		if err := g.Wait(); err != nil {
			log.WithError(err).Fatalln("start jobs")
		}

		<-signal.WithContext(ctx).Done()

		for _, job := range jobs {
			if err := job.Stop(); err != nil {
				log.WithError(err).Errorln("stop job")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
