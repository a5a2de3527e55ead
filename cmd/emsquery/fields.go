package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <keyword>...",
		Short: "Search fields of the configured database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			fields, err := client.Directory().SearchFields(cmd.Context(), args...)
			if err != nil {
				return err
			}

			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"Name", "Type", "ID"})
			tw.SetAutoWrapText(false)
			for _, f := range fields {
				tw.Append([]string{f.Name, string(f.Type), f.ID})
			}
			tw.Render()
			return saveMetadata(client)
		},
	}
}

func newSystemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List EMS systems available to the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			systems, err := client.Systems(cmd.Context())
			if err != nil {
				return err
			}

			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"ID", "Name", "Description"})
			for _, s := range systems {
				tw.Append([]string{strconv.Itoa(s.ID), s.Name, s.Description})
			}
			tw.Render()
			return nil
		},
	}
}
