package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/heuristics"
	"github.com/mikey/scam-guard/internal/indicators"
)

type catalogDump struct {
	Version    string           `yaml:"version"`
	Thresholds thresholdDump    `yaml:"thresholds"`
	Channels   []channelCatalog `yaml:"channels"`
}

type thresholdDump struct {
	High   int `yaml:"high"`
	Medium int `yaml:"medium"`
}

type channelCatalog struct {
	Channel    indicators.Channel    `yaml:"channel"`
	Categories []indicators.Category `yaml:"categories"`
}

var catalogChannels = []indicators.Channel{
	indicators.ChannelEmail,
	indicators.ChannelText,
	indicators.ChannelCall,
	indicators.ChannelWebsite,
	indicators.ChannelImage,
}

func (a *app) newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the indicator catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				out, err := dumpCatalog(svc.Scorer().Catalog())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
}

func dumpCatalog(c *indicators.Catalog) ([]byte, error) {
	dump := catalogDump{
		Version: c.Version(),
		Thresholds: thresholdDump{
			High:   heuristics.HighThreshold,
			Medium: heuristics.MediumThreshold,
		},
	}
	for _, ch := range catalogChannels {
		cats, err := c.Lookup(ch)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", ch, err)
		}
		dump.Channels = append(dump.Channels, channelCatalog{Channel: ch, Categories: cats})
	}

	out, err := yaml.Marshal(dump)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return out, nil
}
