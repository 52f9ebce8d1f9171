package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInit bool

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write the effective config to the config file")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configInit {
			if cfgPath != "" {
				return cfg.SaveTo(cfgPath)
			}
			return cfg.Save()
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}
