package main

import (
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/postgres"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/api"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"

	"github.com/spf13/cobra"
)

func newServeCmd(e *env) *cobra.Command {
	var addr string
	var dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse an output directory over HTTP",
		Long: `Serve run manifests as JSON under /runs and every artifact under /files/.
With the panel database enabled, /runs lists stored runs and
/runs/{id}/records returns the stored panel.

Example: edd serve --addr :8080 --dir output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			if dir == "" {
				dir = e.cfg.Output.Dir
			}

			var repo ports.PanelRepository
			db, err := e.openDatabase()
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				repo = postgres.NewPanelRepository(db)
			}
			return api.NewServer(dir, repo, e.logger).Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to serve (overrides output.dir)")
	return cmd
}
