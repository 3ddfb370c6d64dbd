package shopify

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lastseal/micro-shopify/internal/constants"
)

// Item is a raw resource payload as returned by the admin API. Numbers are
// decoded as json.Number so identifiers keep their exact value.
type Item map[string]interface{}

// ID returns the item's "id" member formatted as a string, or "" if absent.
func (i Item) ID() string {
	v, ok := i["id"]
	if !ok || v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

// Params are list and count query parameters. Values may be strings,
// integers, booleans, time.Time, string slices or anything fmt can print.
type Params map[string]interface{}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Limit returns the page size carried by the params, or def when absent or
// not a positive integer.
func (p Params) Limit(def int) int {
	raw, ok := p[constants.ParamLimit]
	if !ok {
		return def
	}

	n, err := strconv.Atoi(formatParam(raw))
	if err != nil || n <= 0 {
		return def
	}

	return n
}

// ToValues converts the params to url.Values.
func (p Params) ToValues() url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if p[k] == nil {
			continue
		}

		values.Set(k, formatParam(p[k]))
	}

	return values
}

func formatParam(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// FileUpload describes a file to push through the staged upload workflow.
type FileUpload struct {
	Filename string
	MimeType string
	Content  []byte
	// Alt is the optional alternative text stored with the file.
	Alt string
}

// StagedResource returns the staged upload resource kind for the MIME type.
func (u *FileUpload) StagedResource() string {
	if strings.HasPrefix(u.MimeType, "image/") {
		return constants.StagedResourceImage
	}

	return constants.StagedResourceFile
}

// StagedParameter is one form field required by the upload target.
type StagedParameter struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// StagedTarget is a one-time upload destination.
type StagedTarget struct {
	URL         string            `json:"url"         yaml:"url"`
	ResourceURL string            `json:"resourceUrl" yaml:"resource_url"`
	Parameters  []StagedParameter `json:"parameters"  yaml:"parameters"`
}

// FileStatus is the processing state of a registered file.
type FileStatus string

const (
	FileStatusUploaded   FileStatus = constants.FileStatusUploaded
	FileStatusProcessing FileStatus = constants.FileStatusProcessing
	FileStatusReady      FileStatus = constants.FileStatusReady
	FileStatusFailed     FileStatus = constants.FileStatusFailed
)

// File is a registered file node.
type File struct {
	ID     string                 `json:"id"     yaml:"id"`
	Status FileStatus             `json:"status" yaml:"status"`
	URL    string                 `json:"url"    yaml:"url"`
	Node   map[string]interface{} `json:"node"   yaml:"node"`
}
