package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"

	// maxDefaultColumns bounds the columns picked when --fields is not set.
	maxDefaultColumns = 6
)

func outputFormat() (string, error) {
	output := strings.ToLower(viper.GetString("output"))

	switch output {
	case "", outputTable:
		return outputTable, nil
	case outputJSON, outputYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, output)
	}
}

// encode writes value as JSON or YAML. It reports false for the table format.
func encode(w io.Writer, format string, value interface{}) (bool, error) {
	switch format {
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return true, encoder.Encode(value)
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return true, encoder.Encode(value)
	default:
		return false, nil
	}
}

// printItems renders a list of items. fields selects the table columns.
func printItems(w io.Writer, items []shopify.Item, fields []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if done, err := encode(w, format, items); done {
		return err
	}

	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No items found")

		return nil
	}

	columns := fields
	if len(columns) == 0 {
		columns = defaultColumns(items[0])
	}

	table := tablewriter.NewWriter(w)
	table.Header(headerCells(columns)...)

	for _, item := range items {
		row := make([]interface{}, 0, len(columns))
		for _, column := range columns {
			row = append(row, cell(item[column]))
		}

		_ = table.Append(row...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// printItem renders a single item as a property table.
func printItem(w io.Writer, item shopify.Item) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if done, err := encode(w, format, item); done {
		return err
	}

	keys := make([]string, 0, len(item))
	for key := range item {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append(key, cell(item[key]))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// printProperties renders ordered name/value pairs.
func printProperties(w io.Writer, value interface{}, properties [][2]string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if done, err := encode(w, format, value); done {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, property := range properties {
		_ = table.Append(property[0], property[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// defaultColumns picks "id" first, then the scalar members in name order.
func defaultColumns(item shopify.Item) []string {
	var columns []string

	if _, ok := item["id"]; ok {
		columns = append(columns, "id")
	}

	keys := make([]string, 0, len(item))
	for key, value := range item {
		if key == "id" {
			continue
		}

		switch value.(type) {
		case map[string]interface{}, []interface{}:
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if len(columns) == maxDefaultColumns {
			break
		}

		columns = append(columns, key)
	}

	return columns
}

func headerCells(columns []string) []interface{} {
	cells := make([]interface{}, len(columns))
	for i, column := range columns {
		cells[i] = strings.ToUpper(column)
	}

	return cells
}

func cell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
