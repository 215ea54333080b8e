package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

type WebdavConfig struct {
	URL        string `json:"url"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	SkipVerify bool   `json:"skip_verify"`
}

type WatchConfig struct {
	SettleDelayMs int64 `json:"settle_delay_ms"`
}

type Config struct {
	Webdav  WebdavConfig     `json:"webdav"`
	Thread  int              `json:"thread"`
	Timeout int64            `json:"timeout"`
	Watch   WatchConfig      `json:"watch"`
	LogInfo logger.LogConfig `json:"log_info"`
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := &Config{
		Thread:  1,
		Timeout: 60,
		Watch: WatchConfig{
			SettleDelayMs: 500,
		},
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode json failed, err:%w", err)
	}
	if len(c.Webdav.URL) == 0 {
		return nil, fmt.Errorf("no webdav url found")
	}
	if !strings.HasSuffix(c.Webdav.URL, "/") {
		c.Webdav.URL += "/"
	}
	return c, nil
}
