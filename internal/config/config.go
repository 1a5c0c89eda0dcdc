package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"tandem/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tandem.db"
	EnvFileName           = "tandem.env"
	appDirName            = "tandem"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	Edit           string `toml:"edit"`
	Search         string `toml:"search"`
	SwitchScope    string `toml:"switch_scope"`
	PriorityUp     string `toml:"priority_up"`
	PriorityDown   string `toml:"priority_down"`
	SortDue        string `toml:"sort_due"`
	ClearCompleted string `toml:"clear_completed"`
	Reset          string `toml:"reset"`
	Grab           string `toml:"grab"`
	NextPage       string `toml:"next_page"`
	PrevPage       string `toml:"prev_page"`
	GotoPage       string `toml:"goto_page"`
	DismissToast   string `toml:"dismiss_toast"`
}

type Config struct {
	Backend        string `toml:"backend"`
	DBPath         string `toml:"db_path"`
	RedisURL       string `toml:"redis_url"`
	StateKey       string `toml:"state_key"`
	PageSize       int    `toml:"page_size"`
	WindowRadius   int    `toml:"window_radius"`
	ToastTimeoutMS int    `toml:"toast_timeout_ms"`
	DeleteDelayMS  int    `toml:"delete_delay_ms"`
	LogPath        string `toml:"log_path"`
	LogLevel       string `toml:"log_level"`
	Keys           Keymap `toml:"keys"`
}

// ToastTimeout is the auto-dismiss delay for notifications.
func (c Config) ToastTimeout() time.Duration {
	return time.Duration(c.ToastTimeoutMS) * time.Millisecond
}

// DeleteDelay is how long a row shows as deleting before it is removed.
func (c Config) DeleteDelay() time.Duration {
	return time.Duration(c.DeleteDelayMS) * time.Millisecond
}

// StorageOptions describes the backend selected by the config.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{Kind: c.Backend, DBPath: c.DBPath, RedisURL: c.RedisURL}
}

// ResolveConfigPath honours TANDEM_CONFIG, then the user config directory,
// then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv("TANDEM_CONFIG"); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads the config at path, writing defaults there first if the
// file does not exist. Environment overrides are applied last.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		applyEnv(&cfg, filepath.Dir(path))
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	fillDefaults(&cfg, filepath.Dir(path))
	applyEnv(&cfg, filepath.Dir(path))
	return cfg, cfg.Validate()
}

// Validate rejects settings the program cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case storage.KindSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite backend")
		}
	case storage.KindRedis:
		if c.RedisURL == "" {
			return errors.New("redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.WindowRadius < 0 {
		return fmt.Errorf("window_radius must not be negative, got %d", c.WindowRadius)
	}
	return nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnv overrides storage settings from the process environment, falling
// back to an optional env file next to the config.
func applyEnv(cfg *Config, dir string) {
	file, err := godotenv.Read(filepath.Join(dir, EnvFileName))
	if err != nil {
		file = map[string]string{}
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return file[key]
	}
	if v := lookup("TANDEM_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := lookup("TANDEM_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := lookup("TANDEM_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
}

func fillDefaults(cfg *Config, dir string) {
	def := Default(dir)
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.StateKey == "" {
		cfg.StateKey = def.StateKey
	}
	if cfg.ToastTimeoutMS <= 0 {
		cfg.ToastTimeoutMS = def.ToastTimeoutMS
	}
	if cfg.DeleteDelayMS < 0 {
		cfg.DeleteDelayMS = def.DeleteDelayMS
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	fillKeys(&cfg.Keys, def.Keys)
}

func fillKeys(k *Keymap, def Keymap) {
	pairs := []struct {
		dst *string
		def string
	}{
		{&k.Quit, def.Quit}, {&k.Add, def.Add}, {&k.Up, def.Up}, {&k.Down, def.Down},
		{&k.Toggle, def.Toggle}, {&k.Delete, def.Delete}, {&k.Confirm, def.Confirm},
		{&k.Cancel, def.Cancel}, {&k.Edit, def.Edit}, {&k.Search, def.Search},
		{&k.SwitchScope, def.SwitchScope}, {&k.PriorityUp, def.PriorityUp},
		{&k.PriorityDown, def.PriorityDown}, {&k.SortDue, def.SortDue},
		{&k.ClearCompleted, def.ClearCompleted}, {&k.Reset, def.Reset}, {&k.Grab, def.Grab},
		{&k.NextPage, def.NextPage}, {&k.PrevPage, def.PrevPage}, {&k.GotoPage, def.GotoPage},
		{&k.DismissToast, def.DismissToast},
	}
	for _, p := range pairs {
		if *p.dst == "" {
			*p.dst = p.def
		}
	}
}

// Default is the configuration written on first launch, with the database
// stored in dir.
func Default(dir string) Config {
	return Config{
		Backend:        storage.KindSQLite,
		DBPath:         filepath.Join(dir, DefaultDBName),
		StateKey:       storage.DefaultKey,
		PageSize:       5,
		WindowRadius:   2,
		ToastTimeoutMS: 2600,
		DeleteDelayMS:  180,
		LogLevel:       "info",
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Toggle:         " ",
			Delete:         "d",
			Confirm:        "enter",
			Cancel:         "esc",
			Edit:           "e",
			Search:         "/",
			SwitchScope:    "tab",
			PriorityUp:     "+",
			PriorityDown:   "-",
			SortDue:        "s",
			ClearCompleted: "c",
			Reset:          "R",
			Grab:           "m",
			NextPage:       "n",
			PrevPage:       "p",
			GotoPage:       "g",
			DismissToast:   "x",
		},
	}
}
