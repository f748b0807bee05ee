package config

// Default constructs the canonical pipeline for the given project. It mirrors
// the classic cargo → wasm-bindgen → asset copy → zip flow:
//
//	compile ─────────────► bindings ──► (verify) ──► package
//	import_assets ──► stage_assets ──────────────────────┘
//
// The import_assets/stage_assets pair exists only in the managed-assets
// variant; the asset preprocessor itself is an external collaborator invoked
// out of band, so import_assets is a reminder gate rather than a transform.
func Default(p *Project) *Model {
	compile := &Stage{
		Name:        "compile",
		Description: "Cross-compile the game to WebAssembly in release mode.",
		Handler:     HandlerExec,
		Command:     []string{"cargo", "build", "--release", "--target", WasmTarget},
		Inputs:      []string{"src", "Cargo.toml"},
		Outputs:     []string{p.CompiledBinary()},
	}

	bindings := &Stage{
		Name:        "bindings",
		Description: "Generate the JavaScript shim and top-level WebAssembly binary.",
		Handler:     HandlerExec,
		Command: []string{
			"wasm-bindgen",
			"--out-dir", ".",
			"--out-name", p.Name,
			"--target", "web",
			"--no-typescript",
			p.CompiledBinary(),
		},
		Inputs:    []string{p.CompiledBinary()},
		Outputs:   []string{p.Shim(), p.WebBinary()},
		DependsOn: []string{compile.Name},
		// The bindings generator rewrites the shim and binary in place; two
		// concurrent invocations would interleave on the same output files.
		Serial: true,
	}

	stages := []*Stage{compile, bindings}
	packageDeps := []string{bindings.Name}

	if p.ManagedAssets {
		importAssets := &Stage{
			Name:        "import_assets",
			Description: "Run the asset importer manually; " + p.StagingDir + "/ must be up to date.",
			Handler:     HandlerRemind,
		}
		stageAssets := &Stage{
			Name:        "stage_assets",
			Description: "Copy preprocessed default assets into the serving directory.",
			Handler:     HandlerCopyTree,
			Command:     []string{p.StagingDir, p.AssetsDir},
			Inputs:      []string{p.StagingDir},
			Outputs:     []string{p.AssetsDir},
			DependsOn:   []string{importAssets.Name},
		}
		stages = append(stages, importAssets, stageAssets)
		packageDeps = append(packageDeps, stageAssets.Name)
	}

	if p.Verify {
		verify := &Stage{
			Name:        "verify",
			Description: "Validate the generated WebAssembly binary.",
			Handler:     HandlerVerifyWasm,
			Inputs:      []string{p.WebBinary()},
			DependsOn:   []string{bindings.Name},
		}
		stages = append(stages, verify)
		packageDeps = append(packageDeps, verify.Name)
	}

	pkg := &Stage{
		Name:        "package",
		Description: "Archive the bundle for deployment.",
		Handler:     HandlerArchive,
		Command: []string{
			"zip", "-r",
			p.Archive(),
			p.Entry,
			p.Shim(),
			p.WebBinary(),
			p.AssetsDir,
		},
		Inputs:    []string{p.Entry, p.Shim(), p.WebBinary(), p.AssetsDir},
		Outputs:   []string{p.Archive()},
		DependsOn: packageDeps,
	}
	stages = append(stages, pkg)

	return &Model{Project: p, Stages: stages}
}
