package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/logger"
)

const backupCount = 3

// createBackup rotates path.back1..back3 before path is rewritten
func createBackup(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	oldest := backupName(path, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		logger.Warnw("failed to delete old config backup", logger.FieldPath, oldest, logger.FieldError, err)
	}
	for i := backupCount - 1; i >= 1; i-- {
		from := backupName(path, i)
		if _, err := os.Stat(from); err == nil {
			if err := os.Rename(from, backupName(path, i+1)); err != nil {
				return errors.Wrapf(err, "failed to rotate %s", filepath.Base(from))
			}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupName(path, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	return nil
}

func backupName(path string, n int) string {
	return path + ".back" + string(rune('0'+n))
}

// Marshal renders cfg as TOML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return data, nil
}

// WriteDefaults writes a config file holding every default. Existing files
// are left alone unless overwrite is set.
func WriteDefaults(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.WithHint(errors.Newf("%s already exists", path), "pass --force to overwrite it")
	}
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return writeConfig(path, data)
}

// SetValue updates one dotted key in the TOML file at path, creating the
// file when needed. The value is validated against the full schema first.
func SetValue(path, key string, value interface{}) error {
	doc := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return errors.Wrapf(err, "failed to parse %s", path)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	if err := setNested(doc, strings.Split(key, "."), value); err != nil {
		return err
	}

	v := viper.New()
	SetDefaults(v)
	if !v.IsSet(key) {
		return errors.WithHint(errors.Newf("unknown setting %q", key), "run `qfactor am show` to list settings")
	}
	if err := v.MergeConfigMap(doc); err != nil {
		return errors.Wrap(err, "failed to merge config")
	}
	if _, err := LoadWithViper(v); err != nil {
		return err
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeConfig(path, data)
}

// CoerceValue converts a command-line string to the type of key's default
func CoerceValue(key, raw string) (interface{}, error) {
	v := viper.New()
	SetDefaults(v)
	if !v.IsSet(key) {
		return nil, errors.WithHint(errors.Newf("unknown setting %q", key), "run `qfactor am show` to list settings")
	}
	switch v.Get(key).(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		return b, errors.Wrapf(err, "%s expects true or false", key)
	case int:
		n, err := strconv.Atoi(raw)
		return n, errors.Wrapf(err, "%s expects an integer", key)
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		return f, errors.Wrapf(err, "%s expects a number", key)
	case []string:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	}
	return raw, nil
}

func setNested(doc map[string]interface{}, parts []string, value interface{}) error {
	for i, part := range parts {
		if part == "" {
			return errors.Newf("invalid key %q", strings.Join(parts, "."))
		}
		if i == len(parts)-1 {
			doc[part] = value
			return nil
		}
		next, ok := doc[part].(map[string]interface{})
		if !ok {
			if _, exists := doc[part]; exists {
				return errors.Newf("%s is not a table", strings.Join(parts[:i+1], "."))
			}
			next = map[string]interface{}{}
			doc[part] = next
		}
		doc = next
	}
	return nil
}

func writeConfig(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(path); err != nil {
		return err
	}

	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
