package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio-contact/internal/config"
	"github.com/Zachkp/portfolio-contact/internal/site"
)

var siteFile string // overridable via --site flag

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Portfolio contact page and handoff service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&siteFile, "site", "", "path to the site profile YAML (default: $SITE_FILE)")

	root.AddCommand(serveCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(composeCmd())
	root.AddCommand(resumeCmd())
	return root
}

// loadOwner resolves the site profile from --site, then SITE_FILE.
func loadOwner(cfg *config.Config) (site.Profile, error) {
	path := siteFile
	if path == "" {
		path = cfg.SiteFile
	}
	return site.Load(path)
}
