package actions

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/helper"
)

type DefaultAddConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Value      string       `errorTxt:"value" mandatory:"yes"`
	Force      bool
}

type DefaultRemoveConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
}

type DefaultListConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Writer     io.Writer
}

// RunDefaultAdd adds key+value to the given config file.
// If cfg.Force is not set then it return an error when the key exists.
// The config file is created lazily when the value is first set.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	var val string
	if err := cfg.ConfigFile.Get(cfg.Key, &val); err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil { // else there is an error...
		var keyNotFoundErr config.KeyNotFoundError
		var fileNotFoundErr config.FileNotFoundError
		if !errors.As(err, &keyNotFoundErr) && !errors.As(err, &fileNotFoundErr) { // if there was an unexpected error...
			return err
		}
	}
	err := cfg.ConfigFile.Set(cfg.Key, cfg.Value)
	if err != nil {
		return fmt.Errorf("error writing config file after adding: %v", err)
	}
	fmt.Printf("Key %q added to %q\n", cfg.Key, cfg.ConfigFile.FullPath)
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	err := cfg.ConfigFile.Delete(cfg.Key)
	if err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	fmt.Printf("Key %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints key = value for every default flag value.
func RunDefaultList(cfg *DefaultListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		var v string
		if err = cfg.ConfigFile.Get(k, &v); err != nil {
			return err
		}
		if _, err = fmt.Fprintf(cfg.Writer, "%v = %v\n", k, v); err != nil {
			return err
		}
	}
	return nil
}
