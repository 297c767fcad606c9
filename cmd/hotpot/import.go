package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmeyer/hotpot/internal/activity"
)

func newImportCmd() *cobra.Command {
	var (
		reset   bool
		trim    float64
		joinCSV string
	)

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import GPX/TCX/FIT tracks from a file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if reset {
				if err := db.ResetActivities(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("trim") {
				cfg.TrimDist = trim
			}
			if err := db.SaveConfig(cfg); err != nil {
				return err
			}

			var props activity.PropertySource
			if joinCSV != "" {
				props, err = activity.PropertySourceFromCSV(joinCSV)
				if err != nil {
					return err
				}
			}

			imp := &activity.Importer{
				Store:   storeAdapter{db: db},
				Config:  cfg,
				Parsers: parserSet(),
				Props:   props,
			}
			summary, err := imp.ImportPath(args[0])
			if err != nil {
				return err
			}
			fmt.Println(summary.String())
			logVerbose("import complete: %s", summary.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete all existing activities before importing")
	cmd.Flags().Float64Var(&trim, "trim", 0, "override the configured trim distance in meters")
	cmd.Flags().StringVar(&joinCSV, "join", "", "CSV file of per-path property overrides")
	return cmd
}
