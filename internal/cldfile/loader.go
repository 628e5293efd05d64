package cldfile

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadMode controls how errors are handled during document loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Document is a decoded diagram document, not yet compiled into a graph.
type Document struct {
	Nodes    []NodeDecl    `json:"nodes"`
	Edges    []EdgeDecl    `json:"edges"`
	State    StateDecl     `json:"state,omitempty"`
	Strategy *StrategyDecl `json:"strategy,omitempty"`
}

// NodeDecl declares one node: a unique id, a registry kind, and the kind's
// numeric parameters.
type NodeDecl struct {
	ID     string             `json:"id" yaml:"id"`
	Kind   string             `json:"kind" yaml:"kind"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// EdgeDecl declares one edge. ID defaults to "edge-<N>" by position;
// FromPort and ToPort default to "out" and "in".
type EdgeDecl struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	From     string `json:"from" yaml:"from"`
	FromPort string `json:"fromPort,omitempty" yaml:"fromPort,omitempty"`
	To       string `json:"to" yaml:"to"`
	ToPort   string `json:"toPort,omitempty" yaml:"toPort,omitempty"`
}

// StateDecl carries per-node initial state overrides.
type StateDecl map[string]map[string]float64

// StrategyDecl selects and configures an execution strategy.
// Kind is one of "single", "multi", "converge".
type StrategyDecl struct {
	Kind          string  `json:"kind" yaml:"kind"`
	Iterations    int     `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Threshold     float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty"`
}

// LoadResult contains the results of loading a diagram directory.
type LoadResult struct {
	Document  *Document
	CUEValue  cue.Value // the raw CUE value for additional processing
	FileCount int       // number of CUE files found
}

// Load loads a diagram document from all CUE files in dir.
// In LoadModeFailFast the first error returns immediately; in
// LoadModeCollectAll decoding continues per declaration so one pass reports
// everything wrong with a document.
func Load(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("diagram directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing diagram directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	// Name the files explicitly: directory patterns like "." exclude CUE
	// files that lack a package clause, and diagram files are package-less.
	args := make([]string, 0, len(cueFiles))
	for _, f := range cueFiles {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			rel = f
		}
		args = append(args, rel)
	}
	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{CUEValue: value, FileCount: len(cueFiles)}

	diagramVal := value.LookupPath(cue.ParsePath("diagram"))
	if !diagramVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeBadDocument, Message: "no top-level \"diagram\" struct found"}}
	}

	doc, errs := decodeDocument(diagramVal, mode)
	result.Document = doc
	return result, errs
}

// decodeDocument decodes declaration lists element-by-element so collect-all
// mode can report every malformed declaration, not just the first.
func decodeDocument(v cue.Value, mode LoadMode) (*Document, []error) {
	doc := &Document{}
	var errs []error

	nodesVal := v.LookupPath(cue.ParsePath("nodes"))
	if nodesVal.Exists() {
		iter, err := nodesVal.List()
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("diagram.nodes is not a list: %v", err), Pos: nodesVal.Pos()})
			if mode == LoadModeFailFast {
				return doc, errs
			}
		} else {
			for i := 0; iter.Next(); i++ {
				var decl NodeDecl
				if err := iter.Value().Decode(&decl); err != nil {
					errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("diagram.nodes[%d]: %v", i, err), Pos: iter.Value().Pos()})
					if mode == LoadModeFailFast {
						return doc, errs
					}
					continue
				}
				doc.Nodes = append(doc.Nodes, decl)
			}
		}
	}

	edgesVal := v.LookupPath(cue.ParsePath("edges"))
	if edgesVal.Exists() {
		iter, err := edgesVal.List()
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("diagram.edges is not a list: %v", err), Pos: edgesVal.Pos()})
			if mode == LoadModeFailFast {
				return doc, errs
			}
		} else {
			for i := 0; iter.Next(); i++ {
				var decl EdgeDecl
				if err := iter.Value().Decode(&decl); err != nil {
					errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("diagram.edges[%d]: %v", i, err), Pos: iter.Value().Pos()})
					if mode == LoadModeFailFast {
						return doc, errs
					}
					continue
				}
				doc.Edges = append(doc.Edges, decl)
			}
		}
	}

	stateVal := v.LookupPath(cue.ParsePath("state"))
	if stateVal.Exists() {
		if err := stateVal.Decode(&doc.State); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("diagram.state: %v", err), Pos: stateVal.Pos()})
			if mode == LoadModeFailFast {
				return doc, errs
			}
		}
	}

	strategyVal := v.LookupPath(cue.ParsePath("strategy"))
	if strategyVal.Exists() {
		var decl StrategyDecl
		if err := strategyVal.Decode(&decl); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: fmt.Sprintf("diagram.strategy: %v", err), Pos: strategyVal.Pos()})
			if mode == LoadModeFailFast {
				return doc, errs
			}
		} else {
			doc.Strategy = &decl
		}
	}

	if len(doc.Nodes) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeBadDocument, Message: "diagram declares no nodes"})
	}

	return doc, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
