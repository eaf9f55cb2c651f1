package config

// Default returns the configuration of the desktop shell project layout:
// two settings schemas, the window-manager binaries and scripts, and the
// Windows-only pre-package script. Platform and arch stay empty so the
// saved file targets whichever host runs the build.
func Default() *Config {
	cfg := &Config{
		Manifest: "package.json",
		Schemas: []Schema{
			{
				Name:        "settings",
				Source:      "static/schemas/settings.schema.json",
				Destination: "src/apps/shared/schemas/Settings.ts",
			},
			{
				Name:        "settings-yaml",
				Source:      "static/schemas/settings-yaml.schema.json",
				Destination: "src/apps/shared/schemas/SettingsYaml.ts",
			},
		},
		Commands: Commands{
			SchemaCompiler: "npx json2ts --input $SCHEMA",
			Bundle:         "node scripts/build.js",
			Package:        "npx electron-forge package --platform $PLATFORM --arch $ARCH",
			Make:           "npx electron-forge make --skip-package --platform $PLATFORM --arch $ARCH",
		},
		PrePackage: PrePackage{
			Command:   `powershell -ExecutionPolicy Bypass -File ./scripts/prepackage.ps1 "$OUTPUT_DIR"`,
			Platforms: []string{PlatformWindows},
		},
		Licenses: Licenses{
			App:     "LICENSE",
			Wrapped: "komorebi/LICENSE",
		},
		Artifacts: []string{
			"komorebi/target/release/komorebi.exe",
			"komorebi/target/release/komorebic.exe",
			"komorebi/komorebic.lib.ahk",
			"komorebi/komorebi.generated.ahk",
		},
		Packaging: PackagingConfig{
			Packager: PackagerOptions{
				Name:           "Seelen UI",
				ExecutableName: "seelen-ui",
				Icon:           "static/icons/icon",
				ExtraResources: []string{"static"},
				Asar:           true,
				Ignore:         []string{"^/komorebi", "^/src", "^/scripts", "^/out"},
			},
			Makers: []Maker{
				{Name: "@electron-forge/maker-squirrel", Platforms: []string{PlatformWindows}},
				{Name: "@electron-forge/maker-zip", Platforms: []string{PlatformWindows, "linux", "darwin"}},
			},
			Plugins: []Plugin{
				{Name: "@electron-forge/plugin-auto-unpack-natives"},
			},
			Publishers: []Publisher{
				{
					Name:       "@electron-forge/publisher-github",
					Type:       PublisherGitHub,
					Repository: Repository{Owner: "eythaann", Name: "seelen-ui"},
					TokenEnv:   "GITHUB_TOKEN",
				},
			},
		},
	}

	applyProjectDefaults(cfg)

	return cfg
}
