package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"

	"github.com/php-denken/schubser/config"
	"github.com/php-denken/schubser/syncer"
	"github.com/php-denken/schubser/webdav"
)

const (
	defaultConfigFileEnv = "SCHUBSER_CONFIG"
)

var cmds []CreateFunc

type Context struct {
	Syncer *syncer.Syncer
	Config *config.Config
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func initContext(ctx *Context, cfgs []string) error {
	var c *config.Config
	var err error
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err = config.Parse(cfg)
		if err == nil {
			break
		}
	}
	if c == nil {
		return fmt.Errorf("no valid config file found, last err:%w", err)
	}
	ctx.Config = c
	logitem := c.LogInfo
	logger.Init(logitem.File, logitem.Level, int(logitem.FileCount), int(logitem.FileSize), int(logitem.KeepDays), logitem.Console)
	cli, err := webdav.New(
		webdav.WithBaseURL(c.Webdav.URL),
		webdav.WithAuth(c.Webdav.Username, c.Webdav.Password),
		webdav.WithInsecureSkipVerify(c.Webdav.SkipVerify),
		webdav.WithTimeout(time.Duration(c.Timeout)*time.Second),
	)
	if err != nil {
		return err
	}
	ctx.Syncer, err = syncer.New(
		syncer.WithClient(cli),
		syncer.WithFS(osfs.New("/")),
		syncer.WithThread(c.Thread),
	)
	return err
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "schubser",
		Short:         "Additive webdav tree uploader",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, envConfigFile, "/etc/schubser/config.json", "./schubser_config.json"})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
