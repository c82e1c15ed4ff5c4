// Package config는 viper 기반 설정 로딩을 담당합니다.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 설정 값 접근 인터페이스
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	Unmarshal(out interface{}) error
	ConfigFileUsed() string
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string { return c.v.GetString(key) }
func (c *viperConfig) GetInt(key string) int       { return c.v.GetInt(key) }
func (c *viperConfig) GetBool(key string) bool     { return c.v.GetBool(key) }
func (c *viperConfig) ConfigFileUsed() string      { return c.v.ConfigFileUsed() }

// Unmarshal 전체 설정을 mapstructure 태그 기준으로 구조체에 채웁니다.
func (c *viperConfig) Unmarshal(out interface{}) error {
	return c.v.Unmarshal(out)
}

// 설정 디렉토리 경로
const configDir = "configs"

// Options 로딩 옵션
type Options struct {
	// Defaults 키별 기본값. AutomaticEnv 가 Unmarshal 에 반영되려면 키가 등록되어 있어야 합니다.
	Defaults map[string]interface{}
	// EnvAliases 접두사 없는 환경 변수 별칭 (키 → 환경 변수 이름들)
	EnvAliases map[string][]string
	// DotEnvFiles 먼저 읽을 .env 파일들. 이미 설정된 환경 변수는 덮어쓰지 않습니다.
	DotEnvFiles []string
}

// Load 서비스 이름에 해당하는 YAML 설정을 로드합니다.
//
// 탐색 순서: CONFIG_PATH(파일 또는 디렉토리) → configs/{APP_ENV} → configs.
// 파일이 없으면 기본값과 환경 변수만으로 동작합니다.
func Load(serviceName string, opts Options) (Config, error) {
	if err := loadDotEnv(opts.DotEnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	// 환경 변수 바인딩: STOREFRONT_SERVER_HTTP_PORT 형태
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range opts.EnvAliases {
		prefixed := strings.ToUpper(serviceName) + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, envs...)...); err != nil {
			return nil, fmt.Errorf("환경 변수 바인딩 실패 (%s): %w", key, err)
		}
	}

	configPath := os.Getenv("CONFIG_PATH")
	if info, err := os.Stat(configPath); configPath != "" && err == nil && !info.IsDir() {
		v.SetConfigFile(configPath)
	} else {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		v.SetConfigName(serviceName)
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(filepath.Join(configDir, env))
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("설정 파일 로드 실패: %w", err)
		}
	}

	return &viperConfig{v: v}, nil
}

// loadDotEnv 존재하는 .env 파일만 읽습니다.
func loadDotEnv(files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf(".env 로드 실패 (%s): %w", file, err)
		}
	}
	return nil
}
