package util

import (
	"gopkg.in/ini.v1"
)

// Ini loads an ini file and returns the keys of its unnamed section.
func Ini(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
