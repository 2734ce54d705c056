package main

import (
	"context"
	"fmt"
	"log"

	"github.com/RagaBusiness/manoya-tg-bot/bots/manoya"
	corecmd "github.com/RagaBusiness/manoya-tg-bot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return manoya.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			mc, ok := cfg.(*manoya.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return manoya.Bootstrap(ctx, mc)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
