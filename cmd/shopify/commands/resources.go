package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// NewCountCommand creates the count command
func NewCountCommand() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "count RESOURCE",
		Short: "Count resources",
		Long:  "Count the items of a resource collection, e.g. orders or products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			count, err := client.Resource(args[0]).Count(commandContext(cmd), query)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", args[0], err)
			}

			result := map[string]interface{}{"resource": args[0], "count": count}

			return printProperties(cmd.OutOrStdout(), result, [][2]string{
				{"Resource", args[0]},
				{"Count", fmt.Sprint(count)},
			})
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")

	return cmd
}

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	var (
		params   []string
		fields   []string
		maxPages int
	)

	cmd := &cobra.Command{
		Use:     "search RESOURCE",
		Aliases: []string{"list", "ls"},
		Short:   "List resources",
		Long:    "List every item of a resource collection, following pagination to the last page",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			client, err := createClientWith(cmd, func(config *shopify.Config) {
				config.MaxPages = maxPages
			})
			if err != nil {
				return err
			}

			items, err := client.Resource(args[0]).Search(commandContext(cmd), query)
			if err != nil {
				return fmt.Errorf("failed to search %s: %w", args[0], err)
			}

			return printItems(cmd.OutOrStdout(), items, fields)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "table columns")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 for all)")

	return cmd
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get RESOURCE ID",
		Short: "Get a resource",
		Long:  "Display a single item of a resource collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			item, err := client.Resource(args[0]).Get(commandContext(cmd), args[1])
			if err != nil {
				return fmt.Errorf("failed to get %s %s: %w", args[0], args[1], err)
			}

			return printItem(cmd.OutOrStdout(), item)
		},
	}
}

// NewPutCommand creates the put command
func NewPutCommand() *cobra.Command {
	var file, data string

	cmd := &cobra.Command{
		Use:     "put RESOURCE ID",
		Aliases: []string{"update"},
		Short:   "Update a resource",
		Long:    "Replace fields of an existing item; the input is a JSON or YAML object",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := readItem(cmd.InOrStdin(), file, data)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			updated, err := client.Resource(args[0]).Put(commandContext(cmd), args[1], item)
			if err != nil {
				return fmt.Errorf("failed to update %s %s: %w", args[0], args[1], err)
			}

			return printItem(cmd.OutOrStdout(), updated)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "item file, - for stdin")
	cmd.Flags().StringVarP(&data, "data", "d", "", "inline item")

	return cmd
}

// NewPostCommand creates the post command
func NewPostCommand() *cobra.Command {
	var file, data string

	cmd := &cobra.Command{
		Use:     "post RESOURCE",
		Aliases: []string{"create"},
		Short:   "Create a resource",
		Long:    "Create an item in a resource collection; the input is a JSON or YAML object",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := readItem(cmd.InOrStdin(), file, data)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			created, err := client.Resource(args[0]).Post(commandContext(cmd), item)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}

			return printItem(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "item file, - for stdin")
	cmd.Flags().StringVarP(&data, "data", "d", "", "inline item")

	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RESOURCE ID",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Resource(args[0]).Delete(commandContext(cmd), args[1])
			if err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", args[0], args[1], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], args[1])

			return nil
		},
	}
}
