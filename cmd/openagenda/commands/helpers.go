package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/oaclient"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Yes          = "yes"
	No           = "no"

	defaultJSONIndent = 2
)

// newClient builds a client from flags, environment and config file.
func newClient(ctx context.Context) (*oaclient.OpenAgenda, error) {
	publicKey := viper.GetString("public-key")
	if publicKey == "" {
		return nil, constants.ErrNoPublicKey
	}

	config := &openagenda.Config{
		PublicKey:   publicKey,
		SecretKey:   viper.GetString("secret-key"),
		BaseURL:     viper.GetString("base-url"),
		DefaultLang: viper.GetString("lang"),
		CacheConfig: cacheConfig(),
	}

	if viper.GetBool("verbose") {
		config.Logger = &StderrLogger{writer: os.Stderr}
		config.Debug = true
	}

	client, err := oaclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// cacheConfig reads the optional cache section:
//
//	cache:
//	  type: nats
//	  nats:
//	    url: nats://localhost:4222
//	    bucket: openagenda
func cacheConfig() *openagenda.CacheConfig {
	cacheType := viper.GetString("cache.type")
	if cacheType == "" {
		return nil
	}

	config := &openagenda.CacheConfig{Type: openagenda.CacheType(cacheType)}

	if config.Type == openagenda.CacheTypeNATS {
		config.NATS = &openagenda.NATSKVConfig{
			URL:    viper.GetString("cache.nats.url"),
			Bucket: viper.GetString("cache.nats.bucket"),
			TTL:    viper.GetDuration("cache.nats.ttl"),
		}
	}

	return config
}

// StderrLogger writes client logs to a terminal.
type StderrLogger struct {
	writer io.Writer
}

// Debug logs a debug message.
func (l *StderrLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

// Info logs an info message.
func (l *StderrLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

// Warn logs a warning.
func (l *StderrLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

// Error logs an error.
func (l *StderrLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *StderrLogger) log(level, msg string, fields map[string]interface{}) {
	if len(fields) == 0 {
		_, _ = fmt.Fprintf(l.writer, "[%s] %s\n", level, msg)

		return
	}

	_, _ = fmt.Fprintf(l.writer, "[%s] %s %v\n", level, msg, fields)
}

// outputFormat returns the requested format, table by default.
func outputFormat() string {
	switch format := viper.GetString("output"); format {
	case constants.FormatJSON, constants.FormatYAML:
		return format
	default:
		return constants.FormatTable
	}
}

// encode writes data as JSON or YAML. It reports false for table output.
func encode(writer io.Writer, data interface{}) (bool, error) {
	switch outputFormat() {
	case constants.FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return true, encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(writer)
		defer func() { _ = encoder.Close() }()

		return true, encoder.Encode(data)
	default:
		return false, nil
	}
}

// renderProperties prints one entity as a property table, or encoded.
func renderProperties(writer io.Writer, properties map[string]interface{}) error {
	done, err := encode(writer, properties)
	if done || err != nil {
		return err
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(writer)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append([]string{key, formatValue(properties[key])})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderList prints a page of entities.
func renderList(writer io.Writer, page listPage, header []string, rows [][]string) error {
	done, err := encode(writer, page)
	if done || err != nil {
		return err
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(writer, "No results found")

		return nil
	}

	table := tablewriter.NewWriter(writer)
	cells := make([]any, 0, len(header))
	for _, cell := range header {
		cells = append(cells, cell)
	}

	table.Header(cells...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if page.After != nil {
		_, _ = fmt.Fprintf(writer, "\nTotal: %d, next page: --after %s\n", page.Total, formatValue(page.After))
	} else {
		_, _ = fmt.Fprintf(writer, "\nTotal: %d\n", page.Total)
	}

	return nil
}

// listPage is the encoded form of a collection page.
type listPage struct {
	Items []map[string]interface{} `json:"items"           yaml:"items"`
	Total int                      `json:"total"           yaml:"total"`
	After interface{}              `json:"after,omitempty" yaml:"after,omitempty"`
}

func newListPage[T interface{ ToMap() map[string]interface{} }](list *openagenda.List[T]) listPage {
	page := listPage{
		Items: make([]map[string]interface{}, 0, len(list.Items)),
		Total: list.Total,
		After: list.After,
	}

	for _, item := range list.Items {
		page.Items = append(page.Items, item.ToMap())
	}

	return page
}

func formatValue(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return Yes
		}

		return No
	case int:
		return strconv.Itoa(typed)
	case time.Time:
		if typed.IsZero() {
			return ""
		}

		return typed.Format(time.RFC3339)
	case fmt.Stringer:
		return typed.String()
	case map[string]interface{}, []interface{}, []map[string]interface{}, []string:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return NotAvailable
		}

		return string(encoded)
	default:
		return fmt.Sprint(typed)
	}
}

// translate picks lang from a multilingual value, or its first language.
func translate(value openagenda.Multilingual) string {
	lang := viper.GetString("lang")
	if lang == "" {
		lang = constants.DefaultLang
	}

	if text := value.Lang(lang); text != "" {
		return text
	}

	for _, other := range value.Langs() {
		if text := value.Lang(other); text != "" {
			return text
		}
	}

	return ""
}

// pageParams collects the shared list flags.
func pageParams(cmd *cobra.Command) openagenda.Params {
	params := openagenda.Params{}

	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		params["limit"] = limit
	}

	if after, _ := cmd.Flags().GetStringSlice("after"); len(after) > 0 {
		params["after"] = after
	}

	if search, _ := cmd.Flags().GetString("search"); search != "" {
		params["search"] = search
	}

	return params
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", constants.DefaultPageSize, "results per page")
	cmd.Flags().StringSlice("after", nil, "cursor of the page to fetch")
	cmd.Flags().String("search", "", "full-text search")
}

func parseUID(arg string) (int, error) {
	uid, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid uid %q: %w", arg, openagenda.ErrInvalidInput)
	}

	return uid, nil
}
