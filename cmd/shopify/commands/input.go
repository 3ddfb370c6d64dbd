package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// parseParams converts repeated key=value flags to query parameters.
func parseParams(pairs []string) (shopify.Params, error) {
	params := shopify.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
		}

		params[key] = value
	}

	return params, nil
}

// readItem loads an item from --data or from --file ("-" reads stdin). The
// input may be JSON or YAML.
func readItem(stdin io.Reader, file, data string) (shopify.Item, error) {
	var content []byte

	switch {
	case data != "":
		content = []byte(data)
	case file == "-":
		read, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		content = read
	case file != "":
		read, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}

		content = read
	default:
		return nil, constants.ErrItemInputRequired
	}

	var item shopify.Item

	err := yaml.Unmarshal(content, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing item: %w", err)
	}

	if len(item) == 0 {
		return nil, constants.ErrItemInputRequired
	}

	return item, nil
}

// readQuery returns the query argument or the content of file.
func readQuery(args []string, file string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	if file == "" {
		return "", constants.ErrQueryRequired
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}

	return string(content), nil
}
