package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// appName 同时用作配置目录名和环境变量前缀的来源。
const appName = "org-clone"

var (
	// ErrDestinationRequired 表示既没有 --destination 也没有配置文件中的 destination。
	ErrDestinationRequired = errors.New("destination is required")
	// ErrNotDirectory 表示 destination 存在但不是目录。
	ErrNotDirectory = errors.New("destination is not a directory")
	// ErrTokenRequired 表示没有可用的 GitHub token。
	ErrTokenRequired = errors.New("token is required")
)

// Config 是运行时配置。Token 只从命令行或环境变量读取，不会写入配置文件。
type Config struct {
	Destination string
	Depth       int
	Orgs        []string
	Token       string
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Load 读取 ~/.config/org-clone/config.yaml 和环境变量。
// 配置文件不存在时返回默认值。
func Load() (*Config, error) {
	configFile, err := File()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ORG_CLONE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("destination", "")
	v.SetDefault("depth", 0)
	v.SetDefault("orgs", []string{})
	if err := v.BindEnv("token", "ORG_CLONE_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile 模式下文件缺失返回的是 *fs.PathError 而不是 ConfigFileNotFoundError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{
		Destination: strings.TrimSpace(v.GetString("destination")),
		Depth:       v.GetInt("depth"),
		Orgs:        cleanList(v.GetStringSlice("orgs")),
		Token:       strings.TrimSpace(v.GetString("token")),
	}, nil
}

// Save 写回 destination/depth/orgs，Token 不落盘。
func Save(config Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile, err := File()
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("destination", config.Destination)
	v.Set("depth", config.Depth)
	v.Set("orgs", cleanList(config.Orgs))

	return v.WriteConfigAs(configFile)
}

// ValidateConfig 返回配置中的问题列表，为空表示配置合法。
// destination 由 ResolveDestination 单独检查。
func ValidateConfig(cfg *Config) []string {
	issues := make([]string, 0)
	if cfg == nil {
		return append(issues, "config is nil")
	}

	if cfg.Depth < 0 {
		issues = append(issues, fmt.Sprintf("depth must be >= 0, got %d", cfg.Depth))
	}

	seen := make(map[string]struct{}, len(cfg.Orgs))
	for _, org := range cfg.Orgs {
		key := strings.ToLower(org)
		if _, ok := seen[key]; ok {
			issues = append(issues, fmt.Sprintf("organization %q listed more than once", org))
			continue
		}
		seen[key] = struct{}{}
	}

	return issues
}

// ResolveDestination 标准化目标路径并确认它是一个已存在的目录。
// 在发起任何网络请求之前调用。
func ResolveDestination(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrDestinationRequired
	}

	abs, err := NormalizePath(p)
	if err != nil {
		return "", err
	}

	st, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("destination %s: %w", abs, err)
	}
	if !st.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return abs, nil
}

// NormalizePath 标准化路径：
// 1. 去除首尾空白
// 2. 展开 ~ 为用户主目录
// 3. 转换为绝对路径并清理
func NormalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("empty path")
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// cleanList 去掉空白项，保留原有顺序。
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
