// Package endpoint validates request parameters and builds the URLs and
// bodies of every OpenAgenda API call.
package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Method is an endpoint operation.
type Method string

// Endpoint operations and the HTTP verbs they use.
const (
	MethodExists Method = "exists"
	MethodGet    Method = "get"
	MethodCreate Method = "create"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
)

// Verb returns the HTTP method of m.
func (m Method) Verb() string {
	switch m {
	case MethodExists:
		return http.MethodHead
	case MethodCreate:
		return http.MethodPost
	case MethodUpdate:
		return http.MethodPatch
	case MethodDelete:
		return http.MethodDelete
	default:
		return http.MethodGet
	}
}

// Type is the coercion applied to a parameter.
type Type int

// Parameter types.
const (
	TypeString Type = iota
	TypeInt
	TypeBool
	TypeArray
	TypeDatetime
	TypeJSON
	TypeMap
	// TypeAny only checks presence.
	TypeAny
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "integer"
	case TypeBool:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeDatetime:
		return "datetime"
	case TypeJSON:
		return "json"
	case TypeMap:
		return "map"
	case TypeAny:
		return "value"
	default:
		return "string"
	}
}

// In tells where a parameter goes.
type In int

// Parameter locations.
const (
	InQuery In = iota
	InPath
	InBody
)

// Field declares one accepted parameter.
type Field struct {
	Name string
	Type Type
	In   In
	// Query is the wire name of a query parameter, Name when empty.
	Query string
	// Required lists the methods the parameter is mandatory for.
	Required []Method
	// Methods restricts a query parameter to these methods. Empty means all.
	Methods []Method
	// InList restricts values, rewrite keys included.
	InList []string
	// Rewrite maps accepted aliases to wire values.
	Rewrite map[string]string
	// Min and Max bound integers when Max is positive.
	Min int
	Max int
}

func (f Field) wireName() string {
	if f.Query != "" {
		return f.Query
	}

	return f.Name
}

func (f Field) requiredFor(method Method) bool {
	for _, required := range f.Required {
		if required == method {
			return true
		}
	}

	return false
}

func (f Field) acceptedBy(method Method) bool {
	if len(f.Methods) == 0 {
		return true
	}

	for _, accepted := range f.Methods {
		if accepted == method {
			return true
		}
	}

	return false
}

// Body is the entity sent by create and update.
type Body interface {
	Extract(fields []string, onlyDirty bool) map[string]interface{}
	ToPayload(onlyDirty bool) (*openagenda.Payload, error)
}

// Requester performs authenticated calls and returns parsed bodies carrying
// the _status and _success keys.
type Requester interface {
	Head(ctx context.Context, url string) (map[string]interface{}, error)
	Get(ctx context.Context, url string) (map[string]interface{}, error)
	Post(ctx context.Context, url string, payload *openagenda.Payload) (map[string]interface{}, error)
	Patch(ctx context.Context, url string, payload *openagenda.Payload) (map[string]interface{}, error)
	Delete(ctx context.Context, url string, payload *openagenda.Payload) (map[string]interface{}, error)
}

// pathFunc renders the path of method from validated values.
type pathFunc func(method Method, values map[string]interface{}) string

// checkFunc adds cross-field violations.
type checkFunc func(method Method, values map[string]interface{}, errs *openagenda.ValidationError)

// Endpoint is the parameter schema and URL builder shared by every resource.
type Endpoint struct {
	name    string
	baseURL string
	fields  []Field
	params  openagenda.Params
	body    Body
	path    pathFunc
	check   checkFunc
}

func newEndpoint(name, baseURL string, params openagenda.Params, fields []Field, path pathFunc) *Endpoint {
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	if params == nil {
		params = openagenda.Params{}
	}

	return &Endpoint{
		name:    name,
		baseURL: trimSlash(baseURL),
		fields:  fields,
		params:  params,
		path:    path,
	}
}

// Name returns the resource name.
func (e *Endpoint) Name() string {
	return e.name
}

// Params returns the raw parameters.
func (e *Endpoint) Params() openagenda.Params {
	return e.params
}

// WithBody attaches the entity sent by create and update.
func (e *Endpoint) WithBody(body Body) *Endpoint {
	e.body = body

	return e
}

func (e *Endpoint) bodyValues() map[string]interface{} {
	if e.body == nil || isNil(e.body) {
		return map[string]interface{}{}
	}

	var names []string

	for _, field := range e.fields {
		if field.In == InBody {
			names = append(names, field.Name)
		}
	}

	return e.body.Extract(names, false)
}

// ValidateParams coerces every parameter used by method and reports all
// violations at once. Unknown parameters are ignored.
func (e *Endpoint) ValidateParams(method Method) error {
	_, err := e.validate(method)

	return err
}

func (e *Endpoint) validate(method Method) (map[string]interface{}, error) {
	errs := openagenda.NewValidationError()
	values := make(map[string]interface{}, len(e.fields))
	body := e.bodyValues()

	for _, field := range e.fields {
		var (
			raw     interface{}
			present bool
		)

		if field.In == InBody {
			raw, present = body[field.Name]
			if !present {
				raw, present = e.params[field.Name]
			}
		} else {
			raw, present = e.params[field.Name]
		}

		if !present || isEmpty(raw) {
			if field.requiredFor(method) {
				errs.Add(field.Name, constants.RuleRequired, "This field is required")
			}

			continue
		}

		if field.In == InQuery && !field.acceptedBy(method) {
			continue
		}

		value, err := coerce(field.Type, raw)
		if err != nil {
			errs.Add(field.Name, constants.RuleType, fmt.Sprintf("Expected %s", field.Type))

			continue
		}

		if !field.allows(value) {
			errs.Add(field.Name, constants.RuleInList, "Must be one of: "+strings.Join(field.allowed(), ", "))

			continue
		}

		if number, ok := value.(int); ok && field.Max > 0 && (number < field.Min || number > field.Max) {
			errs.Add(field.Name, constants.RuleRange, fmt.Sprintf("Must be between %d and %d", field.Min, field.Max))

			continue
		}

		values[field.Name] = value
	}

	if e.check != nil {
		e.check(method, values, errs)
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return values, nil
}

func (f Field) allowed() []string {
	if len(f.InList) == 0 && len(f.Rewrite) == 0 {
		return nil
	}

	allowed := append([]string(nil), f.InList...)
	for alias := range f.Rewrite {
		allowed = append(allowed, alias)
	}

	sort.Strings(allowed)

	return allowed
}

func (f Field) allows(value interface{}) bool {
	allowed := f.allowed()
	if allowed == nil {
		return true
	}

	items, ok := value.([]string)
	if !ok {
		items = []string{cast.ToString(value)}
	}

	for _, item := range items {
		index := sort.SearchStrings(allowed, item)
		if index == len(allowed) || allowed[index] != item {
			return false
		}
	}

	return true
}

// URIPath returns the resource path of method. Path parameters are
// validated first; a missing identifier renders as 0.
func (e *Endpoint) URIPath(method Method) (string, error) {
	values, err := e.validate(method)
	if err != nil {
		return "", err
	}

	return e.path(method, values), nil
}

// URIQuery returns the query parameters accepted by method, mapped to their
// wire names.
func (e *Endpoint) URIQuery(method Method) (url.Values, error) {
	values, err := e.validate(method)
	if err != nil {
		return nil, err
	}

	return e.query(method, values), nil
}

func (e *Endpoint) query(method Method, values map[string]interface{}) url.Values {
	query := url.Values{}

	for _, field := range e.fields {
		if field.In != InQuery || !field.acceptedBy(method) {
			continue
		}

		value, ok := values[field.Name]
		if !ok || value == nil {
			continue
		}

		encodeQuery(query, field, value)
	}

	return query
}

func encodeQuery(query url.Values, field Field, value interface{}) {
	key := field.wireName()

	rewrite := func(text string) string {
		if rewritten, ok := field.Rewrite[text]; ok {
			return rewritten
		}

		return text
	}

	switch typed := value.(type) {
	case []string:
		for _, item := range typed {
			query.Add(key+"[]", rewrite(item))
		}
	case map[string]string:
		for sub, item := range typed {
			query.Set(key+"["+sub+"]", item)
		}
	case bool:
		if typed {
			query.Set(key, "1")
		} else {
			query.Set(key, "0")
		}
	case int:
		query.Set(key, strconv.Itoa(typed))
	case time.Time:
		query.Set(key, typed.Format(time.RFC3339))
	default:
		query.Set(key, rewrite(cast.ToString(typed)))
	}
}

// URL returns base URL, path and sorted query string of method.
func (e *Endpoint) URL(method Method) (string, error) {
	values, err := e.validate(method)
	if err != nil {
		return "", err
	}

	return e.url(method, values), nil
}

func (e *Endpoint) url(method Method, values map[string]interface{}) string {
	target := e.baseURL + e.path(method, values)

	encoded := e.query(method, values).Encode()
	if encoded != "" {
		target += "?" + encoded
	}

	return target
}

// request validates, builds the URL and body, and performs method.
func (e *Endpoint) request(ctx context.Context, requester Requester, method Method) (map[string]interface{}, error) {
	values, err := e.validate(method)
	if err != nil {
		return nil, err
	}

	target := e.url(method, values)

	switch method {
	case MethodExists:
		return requester.Head(ctx, target)
	case MethodGet:
		return requester.Get(ctx, target)
	case MethodDelete:
		return requester.Delete(ctx, target, nil)
	}

	if e.body == nil || isNil(e.body) {
		return nil, fmt.Errorf("%s %s without body: %w", method, e.name, openagenda.ErrInvalidInput)
	}

	payload, err := e.body.ToPayload(method == MethodUpdate)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", e.name, err)
	}

	if method == MethodCreate {
		return requester.Post(ctx, target, payload)
	}

	return requester.Patch(ctx, target, payload)
}

// exists maps a HEAD response to a boolean: 2xx is true, 404 false.
func (e *Endpoint) exists(ctx context.Context, requester Requester) (bool, error) {
	response, err := e.request(ctx, requester, MethodExists)
	if err != nil {
		return false, err
	}

	status := Status(response)

	switch {
	case Success(response):
		return true, nil
	case status == http.StatusNotFound:
		return false, nil
	default:
		return false, openagenda.NewTransportError(status, response)
	}
}

// fetch performs a get. A 404 yields a nil body and no error.
func (e *Endpoint) fetch(ctx context.Context, requester Requester) (map[string]interface{}, error) {
	response, err := e.request(ctx, requester, MethodGet)
	if err != nil {
		return nil, err
	}

	if Success(response) {
		return response, nil
	}

	if Status(response) == http.StatusNotFound {
		return nil, nil
	}

	return nil, openagenda.NewTransportError(Status(response), response)
}

// write performs create, update or delete, failing on any non-2xx.
func (e *Endpoint) write(ctx context.Context, requester Requester, method Method) (map[string]interface{}, error) {
	response, err := e.request(ctx, requester, method)
	if err != nil {
		return nil, err
	}

	if !Success(response) {
		return nil, openagenda.NewTransportError(Status(response), response)
	}

	return response, nil
}

// Status reads the _status key of a parsed response.
func Status(response map[string]interface{}) int {
	return cast.ToInt(response[constants.StatusKey])
}

// Success reads the _success key of a parsed response.
func Success(response map[string]interface{}) bool {
	return cast.ToBool(response[constants.SuccessKey])
}

// item unwraps a single resource returned under key, or at the top level.
func item(response map[string]interface{}, key string) map[string]interface{} {
	if nested, ok := response[key].(map[string]interface{}); ok {
		return nested
	}

	return response
}

// items returns the resources listed under key.
func items(response map[string]interface{}, key string) []map[string]interface{} {
	raw, _ := response[key].([]interface{})
	result := make([]map[string]interface{}, 0, len(raw))

	for _, entry := range raw {
		if data, ok := entry.(map[string]interface{}); ok {
			result = append(result, data)
		}
	}

	return result
}

func listMeta(response map[string]interface{}) (int, interface{}) {
	return cast.ToInt(response["total"]), response["after"]
}

func pathID(values map[string]interface{}, name string) string {
	value, ok := values[name]
	if !ok || value == nil {
		return "0"
	}

	return url.PathEscape(cast.ToString(value))
}

func coerce(fieldType Type, raw interface{}) (interface{}, error) {
	switch fieldType {
	case TypeInt:
		if reflected := reflect.ValueOf(raw); reflected.CanInt() {
			return int(reflected.Int()), nil
		}

		return validation.ToInt(raw)
	case TypeBool:
		return cast.ToBoolE(raw)
	case TypeArray:
		return coerceArray(raw)
	case TypeDatetime:
		return cast.ToTimeE(raw)
	case TypeJSON:
		return coerceJSON(raw)
	case TypeMap:
		return coerceMap(raw)
	case TypeAny:
		return raw, nil
	default:
		if reflect.TypeOf(raw).Kind() == reflect.Map || reflect.TypeOf(raw).Kind() == reflect.Slice {
			return nil, fmt.Errorf("%T is not a string: %w", raw, openagenda.ErrInvalidInput)
		}

		return cast.ToStringE(raw)
	}
}

func coerceArray(raw interface{}) ([]string, error) {
	if text, ok := raw.(string); ok {
		parts := strings.Split(text, ",")
		result := make([]string, 0, len(parts))

		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}

		return result, nil
	}

	reflected := reflect.ValueOf(raw)
	if reflected.Kind() != reflect.Slice {
		text, err := arrayItem(reflected)

		return []string{text}, err
	}

	result := make([]string, 0, reflected.Len())

	for index := 0; index < reflected.Len(); index++ {
		text, err := arrayItem(reflected.Index(index))
		if err != nil {
			return nil, err
		}

		result = append(result, text)
	}

	return result, nil
}

func arrayItem(value reflect.Value) (string, error) {
	if value.Kind() == reflect.Interface {
		value = value.Elem()
	}

	if value.CanInt() {
		return strconv.FormatInt(value.Int(), 10), nil
	}

	if !value.IsValid() {
		return "", fmt.Errorf("nil array item: %w", openagenda.ErrInvalidInput)
	}

	return cast.ToStringE(value.Interface())
}

func coerceJSON(raw interface{}) (string, error) {
	if text, ok := raw.(string); ok {
		if !json.Valid([]byte(text)) {
			return "", fmt.Errorf("invalid json: %w", openagenda.ErrInvalidInput)
		}

		return text, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}

	return string(data), nil
}

func coerceMap(raw interface{}) (map[string]string, error) {
	reflected := reflect.ValueOf(raw)
	if reflected.Kind() != reflect.Map || reflected.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%T is not a map: %w", raw, openagenda.ErrInvalidInput)
	}

	result := make(map[string]string, reflected.Len())

	iterator := reflected.MapRange()
	for iterator.Next() {
		value := iterator.Value().Interface()

		if moment, ok := value.(time.Time); ok {
			result[iterator.Key().String()] = moment.Format(time.RFC3339)

			continue
		}

		text, err := cast.ToStringE(value)
		if err != nil {
			return nil, err
		}

		result[iterator.Key().String()] = text
	}

	return result, nil
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}

	reflected := reflect.ValueOf(value)

	switch reflected.Kind() {
	case reflect.String, reflect.Map, reflect.Slice:
		return reflected.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return reflected.IsNil()
	default:
		return false
	}
}

func isNil(value interface{}) bool {
	reflected := reflect.ValueOf(value)

	return reflected.Kind() == reflect.Ptr && reflected.IsNil()
}

func trimSlash(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
