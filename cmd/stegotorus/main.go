/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Command stegotorus is the thin outer shell of the relay engine: it
// loads a config file describing a set of listeners, runs them, and
// turns process signals into shutdown. A first SIGINT or SIGTERM starts
// the graceful drain; a second one goes barbaric.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/mapstructure"
	libdur "github.com/nabbar/golib/duration"
	liblog "github.com/nabbar/golib/logger"
	logcfg "github.com/nabbar/golib/logger/config"
	loglvl "github.com/nabbar/golib/logger/level"
	libver "github.com/nabbar/golib/version"
	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	stgrly "github.com/sysrqb/stegotorus/relay"

	_ "github.com/sysrqb/stegotorus/protocol/null"
	_ "github.com/sysrqb/stegotorus/protocol/xor"
)

type emptyStruct struct{}

type appConfig struct {
	Log       *logcfg.Options `mapstructure:"log" json:"log" yaml:"log" toml:"log"`
	Listeners []stgrly.Config `mapstructure:"listeners" json:"listeners" yaml:"listeners" toml:"listeners"`
}

var (
	cfgFile string

	vrs = libver.NewVersion(
		libver.License_MIT,
		"stegotorus",
		"traffic obfuscation proxy tunneling TCP streams through a pluggable steganography protocol",
		"2024-06-01T00:00:00Z",
		"0000000",
		"1.0.0",
		"Stegotorus Authors",
		"stg",
		emptyStruct{},
		0,
	)

	rootCmd = &spfcbr.Command{
		Use:     "stegotorus",
		Short:   "traffic obfuscation proxy",
		Long:    vrs.GetDescription(),
		Version: vrs.GetRelease(),
		RunE:    run,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path of the config file (json, yaml or toml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*appConfig, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("missing config file, see flag --config")
	}

	vpr := spfvpr.New()
	vpr.SetConfigFile(cfgFile)

	if err := vpr.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg appConfig

	err := vpr.Unmarshal(&cfg, spfvpr.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stgrly.ViperDecoderHook(),
		libdur.ViperDecoderHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))

	if err != nil {
		return nil, err
	}

	if len(cfg.Listeners) == 0 {
		return nil, fmt.Errorf("config defines no listener")
	}

	return &cfg, nil
}

func run(cmd *spfcbr.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cnl := context.WithCancel(cmd.Context())
	defer cnl()

	log := liblog.New(ctx)
	defer func() {
		_ = log.Close()
	}()

	if cfg.Log != nil {
		if err = log.SetOptions(cfg.Log); err != nil {
			return err
		}
	}

	fl := func() liblog.Logger {
		return log
	}

	var done = make(chan struct{})

	e := stgrly.New(ctx, func() {
		close(done)
	}, fl)

	for _, lc := range cfg.Listeners {
		l, le := e.NewListener(lc)
		if le != nil {
			return le
		}

		if err = l.Start(ctx); err != nil {
			return err
		}
	}

	log.Entry(loglvl.InfoLevel, "all listeners running").FieldAdd("count", e.Listeners()).Log()

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	<-sig
	log.Entry(loglvl.InfoLevel, "starting graceful shutdown").Log()

	e.FreeAllListeners()
	e.StartShutdown(false)

	select {
	case <-done:
	case <-sig:
		log.Entry(loglvl.WarnLevel, "going barbaric").Log()
		e.StartShutdown(true)
		<-done
	}

	return nil
}
