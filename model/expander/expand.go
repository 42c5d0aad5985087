// Package expander resolves ${path} references in action parameters against
// session data.
package expander

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/viant/structology/visitor"
)

// expand resolves references in a single string. A string that is exactly one
// reference yields the referenced value with its original type; references
// embedded in text are interpolated. Unknown references resolve to nil (pure)
// or an empty string (embedded).
func expand(value string, from map[string]interface{}) interface{} {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") && !strings.Contains(value[2:len(value)-1], "${") {
		return lookup(strings.TrimSpace(value[2:len(value)-1]), from)
	}

	result := value
	offset := 0
	for {
		start := strings.Index(result[offset:], "${")
		if start == -1 {
			break
		}
		start += offset
		end := strings.IndexByte(result[start:], '}')
		if end == -1 {
			break
		}
		end += start
		replacement := stringifyValue(lookup(strings.TrimSpace(result[start+2:end]), from))
		result = result[:start] + replacement + result[end+1:]
		offset = start + len(replacement)
	}
	return result
}

// lookup navigates dot/bracket paths such as "draft.lines[0]"
func lookup(expr string, from map[string]interface{}) interface{} {
	if expr == "" {
		return nil
	}
	var rootName string
	firstDot := strings.Index(expr, ".")
	firstBracket := strings.Index(expr, "[")
	switch {
	case firstDot < 0 && firstBracket < 0:
		return from[expr]
	case firstDot < 0 || (firstBracket >= 0 && firstBracket < firstDot):
		rootName = expr[:firstBracket]
	default:
		rootName = expr[:firstDot]
	}
	root, ok := from[rootName]
	if !ok {
		return nil
	}
	return processPath(root, expr[len(rootName):])
}

// processPath evaluates a path expression like ".users[1].name" or "[0].email"
func processPath(obj interface{}, path string) interface{} {
	current := obj
	i := 0
	for i < len(path) {
		if path[i] == '.' {
			i++
			continue
		}
		if path[i] == '[' {
			closeBracket := strings.IndexByte(path[i:], ']')
			if closeBracket < 0 {
				return nil
			}
			closeBracket += i
			index, err := strconv.Atoi(path[i+1 : closeBracket])
			if err != nil {
				return nil
			}
			if current = getArrayElement(current, index); current == nil {
				return nil
			}
			i = closeBracket + 1
			continue
		}
		propEnd := len(path)
		if next := strings.IndexAny(path[i:], ".["); next >= 0 {
			propEnd = i + next
		}
		if current = getProperty(current, path[i:propEnd]); current == nil {
			return nil
		}
		i = propEnd
	}
	return current
}

func getProperty(obj interface{}, prop string) interface{} {
	if obj == nil {
		return nil
	}
	if mapObj, ok := obj.(map[string]interface{}); ok {
		return mapObj[prop]
	}
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}
	field := val.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, prop) })
	if !field.IsValid() || !field.CanInterface() {
		return nil
	}
	return field.Interface()
}

func getArrayElement(obj interface{}, index int) interface{} {
	if obj == nil {
		return nil
	}
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Array && val.Kind() != reflect.Slice {
		return nil
	}
	if index < 0 || index >= val.Len() {
		return nil
	}
	return val.Index(index).Interface()
}

// stringifyValue converts a value to its string representation for interpolation
func stringifyValue(val interface{}) string {
	if val == nil {
		return ""
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.String:
		return v.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func hasExpr(value string) bool {
	return strings.Contains(value, "${")
}

// Expand recursively traverses maps and slices, expanding any string containing variable references.
func Expand(value interface{}, from map[string]interface{}) (interface{}, error) {
	var err error
	switch actual := value.(type) {
	case map[string]interface{}:
		expandedMap := make(map[string]interface{}, len(actual))
		visit := visitor.MapVisitorOf[string, interface{}](actual)
		err = visit(func(key string, element interface{}) (bool, error) {
			if element, err = Expand(element, from); err != nil {
				return false, err
			}
			expandedMap[key] = element
			return true, nil
		})
		return expandedMap, err
	case []interface{}:
		expandedSlice := make([]interface{}, len(actual))
		for i, item := range actual {
			if item, err = Expand(item, from); err != nil {
				return nil, err
			}
			expandedSlice[i] = item
		}
		return expandedSlice, nil
	case string:
		if hasExpr(actual) {
			return expand(actual, from), nil
		}
		return actual, nil
	default:
		return actual, nil
	}
}
