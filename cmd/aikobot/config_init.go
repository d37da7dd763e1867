package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage aikobot configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config.yaml with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				path = args[0]
			}
			path = filepath.Clean(path)

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists: %s", path)
			}

			body, err := starterConfigYAML()
			if err != nil {
				return err
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return err
			}

			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func starterConfigYAML() ([]byte, error) {
	cfg := map[string]any{
		"telegram": map[string]any{
			"bot_token": "",
			"base_url":  "https://api.telegram.org",
		},
		"openai": map[string]any{
			"api_key":  "",
			"base_url": "https://api.openai.com",
		},
		"owner_id": 0,
		"sudo_ids": []int64{},
		"llm": map[string]any{
			"model":       "gpt-4o-mini",
			"temperature": 0.7,
			"max_tokens":  400,
		},
		"chat": map[string]any{
			"memory_limit":         12,
			"group_reply_only_tag": true,
			"support_text":         "Need help? Contact the owner.",
		},
		"log_channel_id": 0,
		"db": map[string]any{
			"path": "aikobot.db",
		},
		"health": map[string]any{
			"listen": "",
		},
		"poll": map[string]any{
			"timeout": "30s",
		},
		"task": map[string]any{
			"timeout": "90s",
		},
		"max_concurrency": 8,
		"antispam": map[string]any{
			"enabled":      true,
			"window":       "10s",
			"max_messages": 5,
		},
		"logging": map[string]any{
			"level":      "info",
			"format":     "text",
			"add_source": false,
		},
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
