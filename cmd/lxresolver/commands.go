package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/plugin"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/config"
)

const commandTimeout = 30 * time.Second

var (
	source  string
	songID  string
	tier    string
	keyword string
	page    int
	limit   int
	outPath string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a playable URL for one song",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlugin(cmd.Context(), plugin.Request{
			Action: plugin.ActionMusicURL,
			Source: source,
			Info: map[string]interface{}{
				"type":      tier,
				"musicInfo": map[string]interface{}{"songmid": songID},
			},
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search songs on a platform",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlugin(cmd.Context(), plugin.Request{
			Action: plugin.ActionSearch,
			Source: source,
			Info: map[string]interface{}{
				"keyword": keyword,
				"page":    page,
				"limit":   limit,
			},
		})
	},
}

var initedCmd = &cobra.Command{
	Use:   "inited",
	Short: "Print the capability announcement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ann, err := a.plugin.Inited()
		if err != nil {
			return err
		}
		return printJSON(ann)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	RunE: func(_ *cobra.Command, _ []string) error {
		return config.CreateExampleConfig(outPath)
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&source, "source", "s", "wy", "platform (wy, tx, kg, kw, mg)")
	resolveCmd.Flags().StringVar(&songID, "id", "", "song id")
	resolveCmd.Flags().StringVarP(&tier, "quality", "q", "128k", "requested quality")
	_ = resolveCmd.MarkFlagRequired("id")

	searchCmd.Flags().StringVarP(&source, "source", "s", "wy", "platform (wy, tx, kg, kw, mg)")
	searchCmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search keyword")
	searchCmd.Flags().IntVar(&page, "page", 1, "page number")
	searchCmd.Flags().IntVar(&limit, "limit", 10, "results per page")
	_ = searchCmd.MarkFlagRequired("keyword")

	configInitCmd.Flags().StringVarP(&outPath, "output", "o", "config/config.yaml", "output path")
	configCmd.AddCommand(configInitCmd)
}

func runPlugin(ctx context.Context, req plugin.Request) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.plugin.Handle(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(data)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
