package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FrameworkConfig converts a resolved PackagingConfig into the document shape
// the packaging framework reads. Credentials appear only as environment
// variable names.
func FrameworkConfig(p PackagingConfig) map[string]any {
	packager := map[string]any{
		"name": p.Packager.Name,
		"asar": p.Packager.Asar,
	}

	setIfNotEmpty(packager, "executableName", p.Packager.ExecutableName)
	setIfNotEmpty(packager, "icon", p.Packager.Icon)

	if len(p.Packager.ExtraResources) > 0 {
		packager["extraResource"] = p.Packager.ExtraResources
	}

	if len(p.Packager.Ignore) > 0 {
		packager["ignore"] = p.Packager.Ignore
	}

	makers := make([]map[string]any, 0, len(p.Makers))
	for _, maker := range p.Makers {
		entry := map[string]any{"name": maker.Name, "config": nonNil(maker.Config)}
		if len(maker.Platforms) > 0 {
			entry["platforms"] = maker.Platforms
		}

		makers = append(makers, entry)
	}

	plugins := make([]map[string]any, 0, len(p.Plugins))
	for _, plugin := range p.Plugins {
		plugins = append(plugins, map[string]any{"name": plugin.Name, "config": nonNil(plugin.Config)})
	}

	publishers := make([]map[string]any, 0, len(p.Publishers))
	for _, publisher := range p.Publishers {
		publishers = append(publishers, map[string]any{
			"name":   publisher.Name,
			"config": publisherConfig(publisher),
		})
	}

	return map[string]any{
		"packagerConfig": packager,
		"makers":         makers,
		"plugins":        plugins,
		"publishers":     publishers,
	}
}

func publisherConfig(p Publisher) map[string]any {
	cfg := map[string]any{
		"prerelease": p.Prerelease,
		"draft":      p.Draft,
	}

	switch p.Type {
	case PublisherGitHub:
		cfg["repository"] = map[string]any{"owner": p.Repository.Owner, "name": p.Repository.Name}
		cfg["authTokenEnv"] = p.TokenEnv
	case PublisherS3:
		cfg["bucket"] = p.Bucket
		cfg["endpoint"] = p.Endpoint
		setIfNotEmpty(cfg, "region", p.Region)
		setIfNotEmpty(cfg, "folder", p.Folder)
		cfg["accessKeyIdEnv"] = p.AccessKeyEnv
		cfg["secretAccessKeyEnv"] = p.SecretKeyEnv
	}

	return cfg
}

// RenderFrameworkConfig writes the framework configuration as indented JSON.
func RenderFrameworkConfig(path string, p PackagingConfig) error {
	data, err := json.MarshalIndent(FrameworkConfig(p), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal framework config: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return fmt.Errorf("create framework config dir: %w", err)
	}

	if err = os.WriteFile(path, append(data, '\n'), DefaultFilePermissions); err != nil {
		return fmt.Errorf("write framework config: %w", err)
	}

	return nil
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}
