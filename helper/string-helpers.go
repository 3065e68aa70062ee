package helper

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/tablesync/constants"
)

// StringSliceToOrderedMap adds each value in s to an ordered map with key and value set to the value in s.
func StringSliceToOrderedMap(s []string) *om.OrderedMap {
	retval := om.NewOrderedMap()
	for _, v := range s {
		retval.Set(v, v)
	}
	return retval
}

// Convert a string of the form, 'f1,f2,f3...' into a slice of string values.
// 1) Split on comma.
// 2) Remove leading and trailing spaces.
// Empty tokens are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	tokens := strings.Split(s, ",")
	retval := make([]string, 0, len(tokens))
	for x := range tokens {
		t := strings.TrimSpace(tokens[x])
		if t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// GetStringFromInterfaceUseUtcTime will convert interface{} value to a string.
// Times will be converted to UTC.
func GetStringFromInterfaceUseUtcTime(input interface{}) (string, error) {
	return GetStringFromInterface(input, true)
}

// GetStringFromInterface will convert interface{} value to a string.
// Optionally return Times in UTC.
func GetStringFromInterface(input interface{}, useUTC bool) (retval string, err error) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8, uint16, uint32, uint64:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if useUTC { // if caller requests UTC conversion...
			retval = v.UTC().Format(constants.TimeFormatSnowflake)
		} else { // else output Local time...
			retval = v.Format(constants.TimeFormatSnowflake)
		}
	case []uint8:
		retval = string(v)
	case bool:
		retval = strconv.FormatBool(v)
	case fmt.Stringer:
		retval = v.String()
	case nil:
		retval = ""
	default:
		err = fmt.Errorf("unhandled type while fetching string from interface: type = %v; value = %v", reflect.TypeOf(input), input)
	}
	return
}

// GetTrueFalseStringAsBool trims spaces from s and checks if it can regexp (case insensitive) match "true".
// It returns true if there's a match else false.
func GetTrueFalseStringAsBool(s string) bool {
	re := regexp.MustCompile("(?i)^(true|1|yes)$")
	return re.MatchString(strings.TrimSpace(s))
}

// Maybe s is of the form t c u.
// If so, return  t, u.
// If not, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// ToUpperIfNotQuoted converts any non-quoted strings to upper case.
func ToUpperIfNotQuoted(s []string) []string {
	re := regexp.MustCompile("^\"(.+)\"$")
	retval := make([]string, len(s))
	for idx, v := range s {
		if !re.MatchString(v) { // if the name is NOT quoted...
			retval[idx] = strings.ToUpper(v)
		} else {
			retval[idx] = v
		}
	}
	return retval
}

// StringsToCsv joins the strings by ","
func StringsToCsv(s []string) string {
	return strings.Join(s, ",")
}

// InterfaceToString converts a row of driver values to strings for printing.
func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src))
	for i, v := range src {
		switch x := v.(type) {
		case float64:
			xInt := int(x)
			xFloat := float64(xInt) // truncate the float.
			if x == xFloat {        // if we can treat this as an integer...
				retval[i] = fmt.Sprint(xInt)
			} else { // else we have an exponent...
				retval[i] = strconv.FormatFloat(x, 'g', -1, 64)
			}
		case []uint8: // github.com/alexbrainman/odbc drivers return rows of type []interface{}, containing []uint8 bytes essentially.
			retval[i] = string(x)
		case nil:
			retval[i] = ""
		default:
			retval[i] = fmt.Sprint(v)
		}
	}
	return retval
}
