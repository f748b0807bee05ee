// Package schema holds the HCL wire representation of a forge manifest. It is
// decoded verbatim by gohcl and translated into the agnostic config model by
// the hcl loader.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// ProjectBlock represents a `project` block from a manifest file.
type ProjectBlock struct {
	Name          string `hcl:"name,label"`
	ManagedAssets *bool  `hcl:"managed_assets,optional"`
	Verify        *bool  `hcl:"verify,optional"`
}

// StageBlock represents a `stage` block. A block whose label matches a
// default stage overrides only the attributes it sets; any other label adds a
// new stage to the pipeline.
type StageBlock struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Handler     string   `hcl:"handler,optional"`
	Command     []string `hcl:"command,optional"`
	Inputs      []string `hcl:"inputs,optional"`
	Outputs     []string `hcl:"outputs,optional"`
	DependsOn   []string `hcl:"depends_on,optional"`
	Serial      *bool    `hcl:"serial,optional"`
}

// ManifestConfig represents the top-level structure of a forge.hcl file. The
// project block is decoded immediately; stage blocks stay in the remaining
// body so they can be decoded later against an evaluation context carrying
// the resolved project variables.
type ManifestConfig struct {
	Project *ProjectBlock `hcl:"project,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

// StagesConfig is the second decoding phase: every stage block of the
// manifest, evaluated with the project variables in scope.
type StagesConfig struct {
	Stages []*StageBlock `hcl:"stage,block"`
}
