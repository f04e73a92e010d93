// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the collabrank CLI: discovery and
// ranking of potential academic collaborators at a target institution.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/collabrank/internal/inspire"
	"github.com/meshintel/collabrank/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

const defaultHTTPTimeout = 60 * time.Second

// userAgent identifies collabrank to the bibliographic API, with the
// configured contact email when one is available (polite-access convention).
func userAgent() string {
	ua := "collabrank/" + version
	if email := secrets.Lookup(loadedSecrets, "inspire-contact-email", "COLLABRANK_CONTACT_EMAIL"); email != "" {
		ua += " (mailto:" + email + ")"
	}
	return ua
}

func inspireClient() *inspire.Client {
	return inspire.NewClient(defaultHTTPTimeout, userAgent())
}

func openaiKey() string {
	return secrets.Lookup(loadedSecrets, "openai-api-key", "OPENAI_API_KEY")
}

func googleKey() string {
	return secrets.Lookup(loadedSecrets, "google-api-key", "GOOGLE_API_KEY", "GEMINI_API_KEY")
}

// rootCmd is the base command for the collabrank CLI.
var rootCmd = &cobra.Command{
	Use:   "collabrank",
	Short: "Discover and rank potential academic collaborators",
	Long: `collabrank finds researchers at a target institution through web search
and bibliographic affiliation records, digests their recent papers, and ranks
them against your own research context with a generative ranking model.

Typical workflow: "collabrank init" once to build your research context, then
"collabrank rank \"<Institution>\"" per institution. "collabrank discover"
runs the discovery stages alone.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./collabrank.yaml or ~/.config/collabrank/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("collabrank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "collabrank"))
		}
	}

	viper.SetEnvPrefix("COLLABRANK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
