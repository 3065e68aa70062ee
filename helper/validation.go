package helper

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateStructIsPopulated will check if any mandatory fields in cfg are missing.
// It uses struct tags to determine which fields are mandatory and the error text to fetch.
// The error text returned is just a list of the struct tags with key "errorTxt".
func ValidateStructIsPopulated(cfg interface{}) (err error) {
	errs := make([]string, 0)
	GetStructErrorTxt4UnsetFields(cfg, &errs)
	if len(errs) > 0 {
		err = fmt.Errorf("please supply values for %v", strings.Join(errs, ", "))
	}
	return
}

// GetStructErrorTxt4UnsetFields will reflect over interface i and build a slice containing error text strings for any
// struct fields that are unset i.e. are the zero value for the given field type.
// The error text strings are fetched from the errorTxt tags values found in the supplied interface (struct)
// where tag mandatory:"yes" is set.
func GetStructErrorTxt4UnsetFields(i interface{}, errTags *[]string) {
	val := reflect.ValueOf(i)
	if reflect.TypeOf(i).Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()
	for idx := 0; idx < val.NumField(); idx++ { // for each field in the value/struct...
		f := val.Field(idx)
		sf := typ.Field(idx)
		if sf.PkgPath != "" { // if the field is not exported...
			continue
		}
		mandatory := sf.Tag.Get("mandatory") == "yes"
		switch f.Type().Kind() {
		case reflect.Struct: // if we are looking at a nested struct and need to go down another level...
			GetStructErrorTxt4UnsetFields(f.Interface(), errTags)
		case reflect.Map:
			for _, v := range f.MapKeys() { // for each map key...
				mapVal := f.MapIndex(v)
				if mapVal.Type().Kind() == reflect.Struct { // if the map value is a struct...
					GetStructErrorTxt4UnsetFields(mapVal.Interface(), errTags) // descend deeper.
				}
			}
		case reflect.Slice:
		case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
			if mandatory && f.IsNil() {
				*errTags = append(*errTags, sf.Tag.Get("errorTxt"))
			}
		default: // extract tags from this struct field...
			if mandatory && f.IsZero() { // if the field is its zero value and it is mandatory...
				*errTags = append(*errTags, sf.Tag.Get("errorTxt"))
			}
		}
	}
}
