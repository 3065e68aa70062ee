package config

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/relloyd/tablesync/rdbms/shared"
	"gopkg.in/yaml.v2"
)

var tableSyncHomeDir string
var Main *File
var Connections *File

func init() {
	Main = NewConfigFileWithDir(mustGetConfigHomeDir(), MainFileFullName)
	Connections = NewConfigFileWithDir(mustGetConfigHomeDir(), ConnectionsConfigFileFullName)
}

const (
	MainDir                         = ".tablesync"
	MainFileNamePrefix              = "config"
	MainFileNameExt                 = "yaml"
	MainFileFullName                = MainFileNamePrefix + "." + MainFileNameExt
	ConnectionsConfigFileNamePrefix = "connections"
	ConnectionsConfigFileNameExt    = "yaml"
	ConnectionsConfigFileFullName   = ConnectionsConfigFileNamePrefix + "." + ConnectionsConfigFileNameExt
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
	err        error
}

func (k KeyNotFoundError) Error() string {
	if k.err != nil {
		return fmt.Sprintf("key %q not found in config file %q: %v", k.key, k.configFile, k.err)
	}
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML map of keys stored in an EncryptedFile.
type File struct {
	Dirname      string
	FileName     string
	FilePrefix   string
	FileExt      string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	f            *EncryptedFile
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	c := &File{Dirname: dirName, FileName: filename}
	c.FullPath = path.Join(dirName, filename)
	c.FileExt = strings.TrimLeft(path.Ext(filename), ".")
	c.FilePrefix = strings.TrimSuffix(c.FileName, "."+c.FileExt)
	c.data = make(map[string]interface{})
	c.f = NewEncryptedFileWithDir(dirName, filename)
	return c
}

func isFileNotFound(err error) bool {
	var e FileNotFoundError
	return errors.As(err, &e)
}

// Get will fetch the key from the config File into variable, out.
// Supported out types are: string, ConnectionDetails.
// Return an error if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	d, ok := c.data[key]
	if !ok { // if the key was not found...
		switch val.Elem().Interface().(type) {
		case string:
			return KeyNotFoundError{c.FullPath, key, fmt.Errorf("missing string value for key")}
		case shared.ConnectionDetails:
			return KeyNotFoundError{c.FullPath, key, fmt.Errorf("missing database connection")}
		}
		return KeyNotFoundError{configFile: c.FullPath, key: key}
	}
	// Set the value.
	return mapstructure.Decode(d, out)
}

func (c *File) Set(key string, val interface{}) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.data[key] = val
	return c.save(key)
}

func (c *File) Delete(key string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{configFile: c.FullPath, key: key}
	}
	delete(c.data, key)
	return c.save(key)
}

// GetAllKeys returns the keys in sorted order.
// A missing file has no keys.
func (c *File) GetAllKeys() ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

func (c *File) save(key string) error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data while writing key %v to config file %v: %v", key, c.FullPath, err)
	}
	return c.f.Set(b)
}

// ensureLoaded reads the file once. A missing file is not an error.
func (c *File) ensureLoaded() error {
	if c.dataIsLoaded {
		return nil
	}
	if err := c.loadData(); err != nil && !isFileNotFound(err) {
		return err
	}
	return nil
}

func (c *File) loadData() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.f.Get()
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(b, c.data); err != nil {
		return err
	}
	c.dataIsLoaded = true
	return nil
}
