package subcmd

import (
	"github.com/grocyscan/grocy-scanner/kernel/supervisor"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewAddonsCommand())
}

func NewAddonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "addons",
		Short: "List installed add-ons as seen by the supervisor, marking the grocy match",
		Args:  cobra.NoArgs,
		RunE:  listAddons,
	}
}

func listAddons(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newSupervisorClient(cfg)
	if err != nil {
		return err
	}
	addons, err := client.ListAddons(cmd.Context())
	if err != nil {
		return err
	}
	match, _ := supervisor.FindService(addons, cfg.Supervisor.ServiceName, cfg.Supervisor.SelfSlug)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Slug", "Name", "State", "Version"})
	for _, addon := range addons {
		marker := ""
		if addon.Slug == match {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, addon.Slug, addon.Name, addon.State, addon.Version})
	}
	t.AppendFooter(table.Row{"", "", "", "total", len(addons)})
	t.Render()
	return nil
}
