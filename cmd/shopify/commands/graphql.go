package commands

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewGraphQLCommand creates the graphql command
func NewGraphQLCommand() *cobra.Command {
	var file, variables string

	cmd := &cobra.Command{
		Use:   "graphql [QUERY]",
		Short: "Run a GraphQL admin API query",
		Long:  "Run a query or mutation and print its data; the query is read from --file when not given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(args, file)
			if err != nil {
				return err
			}

			var vars map[string]interface{}

			if variables != "" {
				err = yaml.Unmarshal([]byte(variables), &vars)
				if err != nil {
					return fmt.Errorf("parsing variables: %w", err)
				}
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			data, err := client.GraphQL().Query(commandContext(cmd), query, vars)
			if err != nil {
				return fmt.Errorf("failed to run query: %w", err)
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format == outputYAML {
				var value interface{}

				err = json.Unmarshal(data, &value)
				if err != nil {
					return fmt.Errorf("decoding data: %w", err)
				}

				_, err = encode(cmd.OutOrStdout(), format, value)

				return err
			}

			var out bytes.Buffer

			err = json.Indent(&out, data, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting data: %w", err)
			}

			out.WriteByte('\n')
			_, err = out.WriteTo(cmd.OutOrStdout())

			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "query file")
	cmd.Flags().StringVar(&variables, "variables", "", "variables as a JSON or YAML object")

	return cmd
}
